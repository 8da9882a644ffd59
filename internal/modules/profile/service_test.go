// README: Profile service tests against in-memory store and cache fakes.
package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"ada/internal/config"
	"ada/internal/modules/pricing"
	"ada/internal/types"
)

var _ pricing.ProfileStore = (*Service)(nil)

type memStore struct {
	mu       sync.Mutex
	rows     map[int64]map[string]pricing.CostProfile
	updated  map[string]time.Time
	getCalls int
}

func newMemStore() *memStore {
	return &memStore{
		rows:    map[int64]map[string]pricing.CostProfile{},
		updated: map[string]time.Time{},
	}
}

func (m *memStore) Upsert(_ context.Context, tenantID int64, p pricing.CostProfile, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[tenantID] == nil {
		m.rows[tenantID] = map[string]pricing.CostProfile{}
	}
	m.rows[tenantID][p.ProfileID] = p
	m.updated[p.ProfileID] = now
	return nil
}

func (m *memStore) Get(_ context.Context, tenantID int64, profileID string) (pricing.CostProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	p, ok := m.rows[tenantID][profileID]
	if !ok {
		return pricing.CostProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) List(_ context.Context, tenantID int64) ([]pricing.CostProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pricing.CostProfile
	for _, p := range m.rows[tenantID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileID < out[j].ProfileID })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, tenantID int64, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tenantID][profileID]; !ok {
		return ErrNotFound
	}
	delete(m.rows[tenantID], profileID)
	return nil
}

type memCache struct {
	entries     map[string]pricing.CostProfile
	failReads   bool
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]pricing.CostProfile{}}
}

func (c *memCache) Get(_ context.Context, tenantID int64, profileID string) (pricing.CostProfile, bool, error) {
	if c.failReads {
		return pricing.CostProfile{}, false, errors.New("cache down")
	}
	p, ok := c.entries[cacheKey(tenantID, profileID)]
	return p, ok, nil
}

func (c *memCache) Set(_ context.Context, tenantID int64, p pricing.CostProfile) error {
	c.entries[cacheKey(tenantID, p.ProfileID)] = p
	return nil
}

func (c *memCache) Invalidate(_ context.Context, tenantID int64, profileID string) error {
	key := cacheKey(tenantID, profileID)
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

var admin = types.Caller{Email: "admin@carrier.test", Role: types.RoleAdmin, TenantID: 3}

func ptr(v float64) *float64 { return &v }

func TestUpsert_AppliesDefaults(t *testing.T) {
	svc := NewService(newMemStore(), config.DefaultProfile())

	p, err := svc.Upsert(context.Background(), admin, Input{
		ProfileID:   " dry-van ",
		DisplayName: "Dry Van",
		MPG:         ptr(7),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ProfileID != "dry-van" {
		t.Fatalf("expected trimmed id, got %q", p.ProfileID)
	}
	if p.MPG != 7 {
		t.Fatalf("expected mpg override 7, got %v", p.MPG)
	}
	if p.DriverPayPerMile != 0.70 || p.TargetMilesPerDay != 450 || p.MaxDeadheadMiles != 150 {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if p.FuelPriceByRegion[pricing.NationalRegion] != 3.85 {
		t.Fatalf("expected default national fuel price, got %v", p.FuelPriceByRegion)
	}
	if p.BlockBrokers == nil {
		t.Fatalf("expected empty block list, got nil")
	}
}

func TestUpsert_MapsReplaceDefaults(t *testing.T) {
	svc := NewService(newMemStore(), config.DefaultProfile())

	p, err := svc.Upsert(context.Background(), admin, Input{
		ProfileID:         "reefer",
		DisplayName:       "Reefer",
		FuelPriceByRegion: map[string]float64{"National": 4.00},
		BlockBrokers:      map[string]string{"Shady Freight": "slow pay"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(p.FuelPriceByRegion) != 1 {
		t.Fatalf("expected supplied fuel map only, got %v", p.FuelPriceByRegion)
	}
	if p.BlockBrokers["Shady Freight"] != "slow pay" {
		t.Fatalf("expected block list kept, got %v", p.BlockBrokers)
	}
	if svc.Defaults().FuelPriceByRegion["West"] != 4.25 {
		t.Fatalf("defaults template was mutated")
	}
}

func TestUpsert_Validation(t *testing.T) {
	svc := NewService(newMemStore(), config.DefaultProfile())

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"missing id", Input{DisplayName: "x"}, ErrBadRequest},
		{"missing name", Input{ProfileID: "x"}, ErrBadRequest},
		{"zero mpg", Input{ProfileID: "x", DisplayName: "x", MPG: ptr(0)}, pricing.ErrInvalidProfile},
		{"zero target miles", Input{ProfileID: "x", DisplayName: "x", TargetMilesPerDay: ptr(0)}, pricing.ErrInvalidProfile},
		{"negative margin", Input{ProfileID: "x", DisplayName: "x", MinMarginPercent: ptr(-0.1)}, pricing.ErrInvalidProfile},
		{"no national price", Input{ProfileID: "x", DisplayName: "x", FuelPriceByRegion: map[string]float64{"West": 4}}, pricing.ErrInvalidProfile},
		{"zero fuel price", Input{ProfileID: "x", DisplayName: "x", FuelPriceByRegion: map[string]float64{"National": 0}}, pricing.ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upsert(context.Background(), admin, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetProfile_ReadThrough(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, config.DefaultProfile(), WithCache(cache))
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, Input{ProfileID: "dry-van", DisplayName: "Dry Van"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.GetProfile(ctx, admin.TenantID, "dry-van"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if store.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.getCalls)
	}

	if _, err := svc.Upsert(ctx, admin, Input{ProfileID: "dry-van", DisplayName: "Dry Van 2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p, err := svc.GetProfile(ctx, admin.TenantID, "dry-van")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.DisplayName != "Dry Van 2" {
		t.Fatalf("expected fresh snapshot after upsert, got %q", p.DisplayName)
	}
	if store.getCalls != 2 {
		t.Fatalf("expected a second store read after invalidation, got %d", store.getCalls)
	}
}

func TestGetProfile_CacheFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	cache.failReads = true
	svc := NewService(store, config.DefaultProfile(), WithCache(cache))
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, Input{ProfileID: "dry-van", DisplayName: "Dry Van"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.GetProfile(ctx, admin.TenantID, "dry-van"); err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
}

func TestTenantScoping(t *testing.T) {
	svc := NewService(newMemStore(), config.DefaultProfile(), WithCache(newMemCache()))
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, Input{ProfileID: "dry-van", DisplayName: "Dry Van"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	other := types.Caller{Email: "x@other.test", Role: types.RoleOwner, TenantID: 99}

	if _, err := svc.Get(ctx, other, "dry-van"); !errors.Is(err, pricing.ErrProfileNotFound) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
	if err := svc.Delete(ctx, other, "dry-van"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on cross-tenant delete, got %v", err)
	}
	list, err := svc.List(ctx, other)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for other tenant, got %v", list)
	}
}

func TestListAndDelete(t *testing.T) {
	cache := newMemCache()
	svc := NewService(newMemStore(), config.DefaultProfile(), WithCache(cache))
	ctx := context.Background()

	for _, id := range []string{"reefer", "dry-van", "flatbed"} {
		if _, err := svc.Upsert(ctx, admin, Input{ProfileID: id, DisplayName: id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	list, err := svc.List(ctx, admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{}
	for _, s := range list {
		got = append(got, s.ProfileID)
	}
	want := []string{"dry-van", "flatbed", "reefer"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if list[0].MPG != 6.5 || list[0].MinMarginPercent != 0.15 {
		t.Fatalf("unexpected summary %+v", list[0])
	}

	if err := svc.Delete(ctx, admin, "flatbed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, admin, "flatbed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	last := cache.invalidated[len(cache.invalidated)-1]
	if last != "profile:3:flatbed" {
		t.Fatalf("expected invalidation of deleted key, got %q", last)
	}
}
