// README: Pricing service tests with in-memory profile store and log sink.
package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ada/internal/types"
)

type memProfiles struct {
	byTenant map[int64]map[string]CostProfile
}

func (m *memProfiles) GetProfile(_ context.Context, tenantID int64, profileID string) (CostProfile, error) {
	p, ok := m.byTenant[tenantID][profileID]
	if !ok {
		return CostProfile{}, ErrProfileNotFound
	}
	return p, nil
}

type logEntry struct {
	caller    types.Caller
	profileID string
	load      LoadRequest
	rec       Recommendation
}

type recordingSink struct {
	mu      sync.Mutex
	entries []logEntry
	err     error
}

func (s *recordingSink) Append(_ context.Context, caller types.Caller, profileID string, load LoadRequest, rec Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, logEntry{caller: caller, profileID: profileID, load: load, rec: rec})
	return nil
}

type fixedMileage struct {
	miles       float64
	err         error
	origin, dst string
}

func (f *fixedMileage) LoadedMiles(_ context.Context, origin, destination string) (float64, error) {
	f.origin, f.dst = origin, destination
	return f.miles, f.err
}

var dispatcher = types.Caller{Email: "dispatch@carrier.test", Role: types.RoleDispatcher, TenantID: 7}

func newProfiles() *memProfiles {
	return &memProfiles{byTenant: map[int64]map[string]CostProfile{
		7: {"dry-van": baseProfile()},
	}}
}

func TestService_Recommend_LogsResult(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(newProfiles(), sink)

	rec, err := svc.Recommend(context.Background(), dispatcher, "dry-van", baseLoad())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Decision != DecisionGo {
		t.Errorf("decision = %s, want GO", rec.Decision)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(sink.entries))
	}
	got := sink.entries[0]
	if got.caller != dispatcher || got.profileID != "dry-van" {
		t.Errorf("logged attribution = %+v / %s", got.caller, got.profileID)
	}
	if got.rec.NegotiationScript != rec.NegotiationScript {
		t.Errorf("logged recommendation differs from returned one")
	}
}

func TestService_Recommend_TenantScoped(t *testing.T) {
	svc := NewService(newProfiles(), &recordingSink{})
	other := dispatcher
	other.TenantID = 8
	if _, err := svc.Recommend(context.Background(), other, "dry-van", baseLoad()); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestService_Recommend_SinkFailureIsNotFatal(t *testing.T) {
	svc := NewService(newProfiles(), &recordingSink{err: errors.New("db down")})
	rec, err := svc.Recommend(context.Background(), dispatcher, "dry-van", baseLoad())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Decision == "" {
		t.Errorf("expected a decision")
	}
}

func TestService_Recommend_InvalidLoadNotLogged(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(newProfiles(), sink)
	load := baseLoad()
	load.OfferedTotalRate = 0
	if _, err := svc.Recommend(context.Background(), dispatcher, "dry-van", load); !errors.Is(err, ErrInvalidLoad) {
		t.Fatalf("expected ErrInvalidLoad, got %v", err)
	}
	if len(sink.entries) != 0 {
		t.Errorf("expected no log entries, got %d", len(sink.entries))
	}
}

func TestService_Recommend_FillsLoadedMiles(t *testing.T) {
	mileage := &fixedMileage{miles: 500}
	sink := &recordingSink{}
	svc := NewService(newProfiles(), sink, WithMileageEstimator(mileage))

	load := baseLoad()
	load.LoadedMiles = 0
	rec, err := svc.Recommend(context.Background(), dispatcher, "dry-van", load)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if mileage.origin != "Dallas, TX" || mileage.dst != "Atlanta, GA" {
		t.Errorf("lookup lane = %q -> %q", mileage.origin, mileage.dst)
	}
	if !near(rec.OfferedRPM, 3.0, eps) {
		t.Errorf("offered rpm = %v, want 3.00", rec.OfferedRPM)
	}
	if sink.entries[0].load.LoadedMiles != 500 {
		t.Errorf("logged loaded miles = %v", sink.entries[0].load.LoadedMiles)
	}
}

func TestService_Recommend_MileageLookupFailure(t *testing.T) {
	svc := NewService(newProfiles(), &recordingSink{}, WithMileageEstimator(&fixedMileage{err: errors.New("quota")}))
	load := baseLoad()
	load.LoadedMiles = 0
	if _, err := svc.Recommend(context.Background(), dispatcher, "dry-van", load); !errors.Is(err, ErrInvalidLoad) {
		t.Fatalf("expected ErrInvalidLoad, got %v", err)
	}
}

func TestService_Recommend_Concurrent(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(newProfiles(), sink)

	const callers = 16
	var wg sync.WaitGroup
	scripts := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := svc.Recommend(context.Background(), dispatcher, "dry-van", baseLoad())
			if err != nil {
				t.Errorf("Recommend() error = %v", err)
				return
			}
			scripts[i] = rec.NegotiationScript
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if scripts[i] != scripts[0] {
			t.Fatalf("caller %d got a different script", i)
		}
	}
	if len(sink.entries) != callers {
		t.Errorf("expected %d log entries, got %d", callers, len(sink.entries))
	}
}
