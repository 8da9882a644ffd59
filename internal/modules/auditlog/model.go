// README: Recommendation log entries and the recent-activity view.
package auditlog

import (
	"fmt"
	"time"

	"ada/internal/modules/pricing"
	"ada/internal/types"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// Entry is one persisted evaluation.
type Entry struct {
	ID        string
	TenantID  int64
	UserEmail string
	UserRole  types.Role
	ProfileID string

	Load pricing.LoadRequest

	Decision               pricing.Decision
	Reasons                []string
	OfferedRPM             float64
	BreakEvenRPM           float64
	TargetRPM              float64
	ProjectedProfit        float64
	ProjectedMarginPercent float64
	NegotiationScript      string

	CreatedAt time.Time
}

// Summary is the shape returned by the recent-activity listing.
type Summary struct {
	CreatedAt              time.Time        `json:"created_at"`
	User                   string           `json:"user"`
	Role                   types.Role       `json:"role"`
	ProfileID              string           `json:"profile_id"`
	BrokerName             string           `json:"broker_name"`
	Lane                   string           `json:"lane"`
	OfferedTotalRate       float64          `json:"offered_total_rate"`
	OfferedRPM             float64          `json:"offered_rpm"`
	Decision               pricing.Decision `json:"decision"`
	Reasons                []string         `json:"reasons"`
	ProjectedProfit        float64          `json:"projected_profit"`
	ProjectedMarginPercent float64          `json:"projected_margin_percent"`
}

func newEntry(id string, now time.Time, caller types.Caller, profileID string, load pricing.LoadRequest, rec pricing.Recommendation) Entry {
	reasons := rec.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return Entry{
		ID:                     id,
		TenantID:               caller.TenantID,
		UserEmail:              caller.Email,
		UserRole:               caller.Role,
		ProfileID:              profileID,
		Load:                   load,
		Decision:               rec.Decision,
		Reasons:                reasons,
		OfferedRPM:             rec.OfferedRPM,
		BreakEvenRPM:           rec.BreakEvenRPM,
		TargetRPM:              rec.TargetRPM,
		ProjectedProfit:        rec.ProjectedProfit,
		ProjectedMarginPercent: rec.ProjectedMarginPercent,
		NegotiationScript:      rec.NegotiationScript,
		CreatedAt:              now,
	}
}

func (e Entry) Summary() Summary {
	return Summary{
		CreatedAt:              e.CreatedAt,
		User:                   e.UserEmail,
		Role:                   e.UserRole,
		ProfileID:              e.ProfileID,
		BrokerName:             e.Load.BrokerName,
		Lane:                   Lane(e.Load),
		OfferedTotalRate:       e.Load.OfferedTotalRate,
		OfferedRPM:             e.OfferedRPM,
		Decision:               e.Decision,
		Reasons:                e.Reasons,
		ProjectedProfit:        e.ProjectedProfit,
		ProjectedMarginPercent: e.ProjectedMarginPercent,
	}
}

// Lane renders "City,ST → City,ST".
func Lane(l pricing.LoadRequest) string {
	return fmt.Sprintf("%s,%s → %s,%s", l.OriginCity, l.OriginState, l.DestCity, l.DestState)
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}
