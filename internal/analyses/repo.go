package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	// GetByIDForUser matches id and owner in one predicate. A record owned by
	// someone else is reported as ErrNotFound.
	GetByIDForUser(ctx context.Context, analysisID, userID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, int, error)
}
