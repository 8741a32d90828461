package files

import "context"

// Repo defines persistence operations for uploaded files.
type Repo interface {
	Create(ctx context.Context, f UploadedFile) error
	// GetByID returns the file when userID owns it or it is public.
	GetByID(ctx context.Context, id, userID string) (UploadedFile, error)
	ListByUser(ctx context.Context, userID string, isPublic *bool, limit, offset int) ([]UploadedFile, int, error)
}
