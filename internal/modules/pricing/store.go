// README: Collaborator contracts the pricing service reads profiles from and writes logs to.
package pricing

import (
	"context"

	"ada/internal/types"
)

// ProfileStore returns a tenant-scoped snapshot of a cost profile, or
// ErrProfileNotFound.
type ProfileStore interface {
	GetProfile(ctx context.Context, tenantID int64, profileID string) (CostProfile, error)
}

// LogSink records an evaluation for audit.
type LogSink interface {
	Append(ctx context.Context, caller types.Caller, profileID string, load LoadRequest, rec Recommendation) error
}

// MileageEstimator supplies loaded miles for a lane when the caller omits them.
type MileageEstimator interface {
	LoadedMiles(ctx context.Context, origin, destination string) (float64, error)
}
