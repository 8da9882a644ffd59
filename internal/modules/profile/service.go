// README: Profile service: tenant-scoped CRUD over cost profiles with a read-through cache.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ada/internal/config"
	"ada/internal/modules/pricing"
	"ada/internal/types"
)

type profileStore interface {
	Upsert(ctx context.Context, tenantID int64, p pricing.CostProfile, now time.Time) error
	Get(ctx context.Context, tenantID int64, profileID string) (pricing.CostProfile, error)
	List(ctx context.Context, tenantID int64) ([]pricing.CostProfile, error)
	Delete(ctx context.Context, tenantID int64, profileID string) error
}

type snapshotCache interface {
	Get(ctx context.Context, tenantID int64, profileID string) (pricing.CostProfile, bool, error)
	Set(ctx context.Context, tenantID int64, p pricing.CostProfile) error
	Invalidate(ctx context.Context, tenantID int64, profileID string) error
}

type Service struct {
	store    profileStore
	cache    snapshotCache
	defaults pricing.CostProfile
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithCache enables the snapshot cache. A nil cache leaves it disabled.
func WithCache(c snapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store profileStore, defaults config.ProfileDefaults, opts ...Option) *Service {
	s := &Service{
		store:    store,
		defaults: fromDefaults(defaults),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns a fresh copy of the template new profiles start from.
func (s *Service) Defaults() pricing.CostProfile {
	return Input{}.apply(s.defaults)
}

// Upsert creates or replaces a profile in the caller's tenant.
func (s *Service) Upsert(ctx context.Context, caller types.Caller, in Input) (pricing.CostProfile, error) {
	in.ProfileID = strings.TrimSpace(in.ProfileID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.ProfileID == "" {
		return pricing.CostProfile{}, fmt.Errorf("%w: profile_id is required", ErrBadRequest)
	}
	if in.DisplayName == "" {
		return pricing.CostProfile{}, fmt.Errorf("%w: display_name is required", ErrBadRequest)
	}

	p := in.apply(s.defaults)
	if err := validate(p); err != nil {
		return pricing.CostProfile{}, err
	}
	if err := s.store.Upsert(ctx, caller.TenantID, p, s.now().UTC()); err != nil {
		return pricing.CostProfile{}, err
	}
	s.invalidate(ctx, caller.TenantID, p.ProfileID)
	s.logger.Info("profile saved",
		zap.Int64("tenant_id", caller.TenantID),
		zap.String("profile_id", p.ProfileID),
		zap.String("by", caller.Email),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, caller types.Caller, profileID string) (pricing.CostProfile, error) {
	return s.GetProfile(ctx, caller.TenantID, profileID)
}

// GetProfile reads through the cache. Cache errors fall back to the store.
func (s *Service) GetProfile(ctx context.Context, tenantID int64, profileID string) (pricing.CostProfile, error) {
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, tenantID, profileID)
		if err != nil {
			s.logger.Warn("profile cache read failed", zap.String("profile_id", profileID), zap.Error(err))
		} else if ok {
			return p, nil
		}
	}

	p, err := s.store.Get(ctx, tenantID, profileID)
	if err != nil {
		return pricing.CostProfile{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, p); err != nil {
			s.logger.Warn("profile cache write failed", zap.String("profile_id", profileID), zap.Error(err))
		}
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, caller types.Caller) ([]Summary, error) {
	profiles, err := s.store.List(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, summarize(p))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, caller types.Caller, profileID string) error {
	if err := s.store.Delete(ctx, caller.TenantID, profileID); err != nil {
		return err
	}
	s.invalidate(ctx, caller.TenantID, profileID)
	s.logger.Info("profile deleted",
		zap.Int64("tenant_id", caller.TenantID),
		zap.String("profile_id", profileID),
		zap.String("by", caller.Email),
	)
	return nil
}

func (s *Service) invalidate(ctx context.Context, tenantID int64, profileID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, profileID); err != nil {
		s.logger.Warn("profile cache invalidate failed", zap.String("profile_id", profileID), zap.Error(err))
	}
}

func validate(p pricing.CostProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := p.FuelPriceByRegion[pricing.NationalRegion]; !ok {
		return fmt.Errorf("%w: fuel_price_by_region needs a %s entry", pricing.ErrInvalidProfile, pricing.NationalRegion)
	}
	for region, price := range p.FuelPriceByRegion {
		if !(price > 0) {
			return fmt.Errorf("%w: fuel price for %s must be positive", pricing.ErrInvalidProfile, region)
		}
	}
	return nil
}
