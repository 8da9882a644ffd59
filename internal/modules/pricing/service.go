// README: Pricing service resolves the profile, evaluates the load and hands the result to the log sink.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ada/internal/types"
)

type Service struct {
	profiles ProfileStore
	logs     LogSink
	mileage  MileageEstimator
	logger   *zap.Logger
}

type Option func(*Service)

// WithMileageEstimator enables loaded-mile lookup for loads submitted without it.
func WithMileageEstimator(m MileageEstimator) Option {
	return func(s *Service) { s.mileage = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(profiles ProfileStore, logs LogSink, opts ...Option) *Service {
	s := &Service{profiles: profiles, logs: logs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend evaluates a load against the caller's profile. The log sink is
// best effort: a failed append is logged and the recommendation still returned.
func (s *Service) Recommend(ctx context.Context, caller types.Caller, profileID string, load LoadRequest) (Recommendation, error) {
	profile, err := s.profiles.GetProfile(ctx, caller.TenantID, profileID)
	if err != nil {
		return Recommendation{}, err
	}

	load = load.Normalize()
	if load.LoadedMiles == 0 && s.mileage != nil {
		miles, err := s.mileage.LoadedMiles(ctx, lanePoint(load.OriginCity, load.OriginState), lanePoint(load.DestCity, load.DestState))
		if err != nil {
			return Recommendation{}, fmt.Errorf("%w: loaded_miles missing and lookup failed: %v", ErrInvalidLoad, err)
		}
		load.LoadedMiles = miles
	}

	rec, err := Evaluate(profile, load)
	if err != nil {
		return Recommendation{}, err
	}

	if s.logs != nil {
		if err := s.logs.Append(ctx, caller, profileID, load, rec); err != nil {
			s.logger.Warn("recommendation log append failed",
				zap.Int64("tenant_id", caller.TenantID),
				zap.String("profile_id", profileID),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("load evaluated",
		zap.Int64("tenant_id", caller.TenantID),
		zap.String("profile_id", profileID),
		zap.String("broker", load.BrokerName),
		zap.String("decision", string(rec.Decision)),
	)
	return rec, nil
}

func lanePoint(city, state string) string {
	return strings.TrimSpace(strings.TrimSpace(city) + ", " + strings.TrimSpace(state))
}
