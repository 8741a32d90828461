package analyses

import (
	"context"
	"sort"
	"sync"
)

type ownedKey struct {
	id     string
	userID string
}

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byKey  map[ownedKey]Analysis
	byUser map[string][]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byKey:  make(map[ownedKey]Analysis),
		byUser: make(map[string][]Analysis),
	}
}

// Create stores the analysis. Ids are never reused.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.byKey {
		if key.id == analysis.ID {
			return errDuplicateID
		}
	}
	r.byKey[ownedKey{id: analysis.ID, userID: analysis.UserID}] = analysis
	r.byUser[analysis.UserID] = append(r.byUser[analysis.UserID], analysis)
	return nil
}

// GetByIDForUser returns the analysis only when it belongs to userID.
func (r *MemoryRepo) GetByIDForUser(ctx context.Context, analysisID, userID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byKey[ownedKey{id: analysisID, userID: userID}]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset,
// plus the total count.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userAnalyses := make([]Analysis, len(r.byUser[userID]))
	copy(userAnalyses, r.byUser[userID])
	r.mu.RUnlock()

	total := len(userAnalyses)
	if total == 0 || offset >= total {
		return []Analysis{}, total, nil
	}
	sort.SliceStable(userAnalyses, func(i, j int) bool {
		return userAnalyses[i].CreatedAt.After(userAnalyses[j].CreatedAt)
	})

	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userAnalyses[offset:end], total, nil
}
