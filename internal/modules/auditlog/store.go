// README: Recommendation log store backed by PostgreSQL.
package auditlog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"ada/internal/modules/pricing"
	"ada/internal/types"
)

type Store struct {
	db    *pgxpool.Pool
	now   func() time.Time
	newID func() string
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db:    db,
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}
}

// Append writes one evaluation. It satisfies pricing.LogSink.
func (s *Store) Append(ctx context.Context, caller types.Caller, profileID string, load pricing.LoadRequest, rec pricing.Recommendation) error {
	e := newEntry(s.newID(), s.now().UTC(), caller, profileID, load, rec)
	_, err := s.db.Exec(ctx, `
		INSERT INTO recommendation_logs (
			id, tenant_id, user_email, user_role, profile_id,
			broker_name, origin_city, origin_state, dest_city, dest_state,
			equipment_type, loaded_miles, deadhead_miles, offered_total_rate, fuel_region,
			decision, reasons, offered_rpm, break_even_rpm, target_rpm,
			projected_profit, projected_margin_percent, negotiation_script, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23, $24
		)`,
		e.ID, e.TenantID, e.UserEmail, string(e.UserRole), e.ProfileID,
		e.Load.BrokerName, e.Load.OriginCity, e.Load.OriginState, e.Load.DestCity, e.Load.DestState,
		e.Load.EquipmentType, e.Load.LoadedMiles, e.Load.DeadheadMiles, e.Load.OfferedTotalRate, e.Load.FuelRegion,
		string(e.Decision), e.Reasons, e.OfferedRPM, e.BreakEvenRPM, e.TargetRPM,
		e.ProjectedProfit, e.ProjectedMarginPercent, e.NegotiationScript, e.CreatedAt,
	)
	return err
}

// Recent returns the tenant's newest entries first.
func (s *Store) Recent(ctx context.Context, tenantID int64, limit int) ([]Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, user_email, user_role, profile_id,
		       broker_name, origin_city, origin_state, dest_city, dest_state,
		       equipment_type, loaded_miles, deadhead_miles, offered_total_rate, fuel_region,
		       decision, reasons, offered_rpm, break_even_rpm, target_rpm,
		       projected_profit, projected_margin_percent, negotiation_script, created_at
		FROM recommendation_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, tenantID, ClampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e.Summary())
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e        Entry
		role     string
		decision string
	)
	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserEmail, &role, &e.ProfileID,
		&e.Load.BrokerName, &e.Load.OriginCity, &e.Load.OriginState, &e.Load.DestCity, &e.Load.DestState,
		&e.Load.EquipmentType, &e.Load.LoadedMiles, &e.Load.DeadheadMiles, &e.Load.OfferedTotalRate, &e.Load.FuelRegion,
		&decision, &e.Reasons, &e.OfferedRPM, &e.BreakEvenRPM, &e.TargetRPM,
		&e.ProjectedProfit, &e.ProjectedMarginPercent, &e.NegotiationScript, &e.CreatedAt,
	)
	if err != nil {
		return Entry{}, err
	}
	e.UserRole = types.Role(role)
	e.Decision = pricing.Decision(decision)
	return e, nil
}
