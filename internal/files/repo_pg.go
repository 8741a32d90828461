package files

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const fileColumns = `id, user_id, original_name, file_name, location, mime_type, size_bytes, extension, is_public, description, tags, created_at`

// Create inserts a new file record.
func (r *PGRepo) Create(ctx context.Context, f UploadedFile) error {
	const query = `
INSERT INTO uploaded_files (` + fileColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.UserID,
		f.OriginalName,
		f.FileName,
		f.Location,
		f.MimeType,
		f.Size,
		f.Extension,
		f.IsPublic,
		f.Description,
		tags,
		f.CreatedAt,
	)
	return err
}

// GetByID fetches a file owned by userID or marked public.
func (r *PGRepo) GetByID(ctx context.Context, id, userID string) (UploadedFile, error) {
	const query = `
SELECT ` + fileColumns + `
FROM uploaded_files
WHERE id = $1 AND (user_id = $2 OR is_public)
LIMIT 1`
	f, err := scanFile(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UploadedFile{}, ErrNotFound
		}
		return UploadedFile{}, err
	}
	return f, nil
}

// ListByUser lists the owner's files newest-first with an optional visibility filter.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, isPublic *bool, limit, offset int) ([]UploadedFile, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	var visibility sql.NullBool
	if isPublic != nil {
		visibility = sql.NullBool{Bool: *isPublic, Valid: true}
	}

	var total int
	const countQuery = `SELECT COUNT(*) FROM uploaded_files WHERE user_id = $1 AND ($2::boolean IS NULL OR is_public = $2)`
	if err := r.DB.QueryRowContext(ctx, countQuery, userID, visibility).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
SELECT ` + fileColumns + `
FROM uploaded_files
WHERE user_id = $1 AND ($2::boolean IS NULL OR is_public = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, userID, visibility, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]UploadedFile, 0, limit)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (UploadedFile, error) {
	var f UploadedFile
	// pgtype.Map caches scan plans and is not safe to share across goroutines.
	tags := pgtype.NewMap().SQLScanner(&f.Tags)
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.OriginalName,
		&f.FileName,
		&f.Location,
		&f.MimeType,
		&f.Size,
		&f.Extension,
		&f.IsPublic,
		&f.Description,
		tags,
		&f.CreatedAt,
	)
	if err != nil {
		return UploadedFile{}, err
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	return f, nil
}
