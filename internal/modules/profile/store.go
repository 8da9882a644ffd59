// README: Cost profile store backed by PostgreSQL (JSONB for fuel prices and block list).
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ada/internal/modules/pricing"
)

const profileColumns = `
	profile_id, display_name,
	driver_pay_per_mile, maintenance_per_mile, insurance_per_mile,
	tires_per_mile, permits_tolls_per_mile, other_variable_per_mile,
	fixed_costs_per_day, target_miles_per_day,
	mpg, fuel_price_by_region,
	min_margin_percent, preferred_margin_percent,
	max_deadhead_miles, block_brokers`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, tenantID int64, p pricing.CostProfile, now time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO carrier_cost_profiles (
			tenant_id,`+profileColumns+`,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13,
			$14, $15,
			$16, $17,
			$18, $18
		)
		ON CONFLICT (tenant_id, profile_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			driver_pay_per_mile = EXCLUDED.driver_pay_per_mile,
			maintenance_per_mile = EXCLUDED.maintenance_per_mile,
			insurance_per_mile = EXCLUDED.insurance_per_mile,
			tires_per_mile = EXCLUDED.tires_per_mile,
			permits_tolls_per_mile = EXCLUDED.permits_tolls_per_mile,
			other_variable_per_mile = EXCLUDED.other_variable_per_mile,
			fixed_costs_per_day = EXCLUDED.fixed_costs_per_day,
			target_miles_per_day = EXCLUDED.target_miles_per_day,
			mpg = EXCLUDED.mpg,
			fuel_price_by_region = EXCLUDED.fuel_price_by_region,
			min_margin_percent = EXCLUDED.min_margin_percent,
			preferred_margin_percent = EXCLUDED.preferred_margin_percent,
			max_deadhead_miles = EXCLUDED.max_deadhead_miles,
			block_brokers = EXCLUDED.block_brokers,
			updated_at = EXCLUDED.updated_at`,
		tenantID, p.ProfileID, p.DisplayName,
		p.DriverPayPerMile, p.MaintenancePerMile, p.InsurancePerMile,
		p.TiresPerMile, p.PermitsTollsPerMile, p.OtherVariablePerMile,
		p.FixedCostsPerDay, p.TargetMilesPerDay,
		p.MPG, map[string]float64(p.FuelPriceByRegion),
		p.MinMarginPercent, p.PreferredMarginPercent,
		p.MaxDeadheadMiles, map[string]string(p.BlockBrokers),
		now,
	)
	return err
}

func (s *Store) Get(ctx context.Context, tenantID int64, profileID string) (pricing.CostProfile, error) {
	row := s.db.QueryRow(ctx, `SELECT`+profileColumns+`
		FROM carrier_cost_profiles
		WHERE tenant_id = $1 AND profile_id = $2`, tenantID, profileID,
	)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return pricing.CostProfile{}, ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, tenantID int64) ([]pricing.CostProfile, error) {
	rows, err := s.db.Query(ctx, `SELECT`+profileColumns+`
		FROM carrier_cost_profiles
		WHERE tenant_id = $1
		ORDER BY profile_id ASC`, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pricing.CostProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, tenantID int64, profileID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM carrier_cost_profiles
		WHERE tenant_id = $1 AND profile_id = $2`, tenantID, profileID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (pricing.CostProfile, error) {
	var (
		p      pricing.CostProfile
		fuel   map[string]float64
		blocks map[string]string
	)
	err := row.Scan(
		&p.ProfileID, &p.DisplayName,
		&p.DriverPayPerMile, &p.MaintenancePerMile, &p.InsurancePerMile,
		&p.TiresPerMile, &p.PermitsTollsPerMile, &p.OtherVariablePerMile,
		&p.FixedCostsPerDay, &p.TargetMilesPerDay,
		&p.MPG, &fuel,
		&p.MinMarginPercent, &p.PreferredMarginPercent,
		&p.MaxDeadheadMiles, &blocks,
	)
	if err != nil {
		return pricing.CostProfile{}, err
	}
	p.FuelPriceByRegion = pricing.FuelPrices(fuel)
	p.BlockBrokers = pricing.BlockList(blocks)
	if p.BlockBrokers == nil {
		p.BlockBrokers = pricing.BlockList{}
	}
	return p, nil
}
