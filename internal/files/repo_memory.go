package files

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores files in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]UploadedFile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]UploadedFile)}
}

// Create stores the file record.
func (r *MemoryRepo) Create(ctx context.Context, f UploadedFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f.Tags = append([]string{}, f.Tags...)
	r.byID[f.ID] = f
	return nil
}

// GetByID returns a file visible to userID.
func (r *MemoryRepo) GetByID(ctx context.Context, id, userID string) (UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return UploadedFile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	if !ok || (f.UserID != userID && !f.IsPublic) {
		return UploadedFile{}, ErrNotFound
	}
	return f, nil
}

// ListByUser returns the owner's files newest first and the filtered total.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, isPublic *bool, limit, offset int) ([]UploadedFile, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	var matched []UploadedFile
	for _, f := range r.byID {
		if f.UserID != userID {
			continue
		}
		if isPublic != nil && f.IsPublic != *isPublic {
			continue
		}
		matched = append(matched, f)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []UploadedFile{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}
