package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-scorer/internal/prompt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, file_name, file_id, analysis_type, result, job_title, company, location, job_description, created_at`

// Create inserts a new analysis. There is no upsert path.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (` + analysisColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	payload, err := json.Marshal(analysis.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var fileID sql.NullString
	if analysis.FileID != nil && *analysis.FileID != "" {
		fileID = sql.NullString{String: *analysis.FileID, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.FileName,
		fileID,
		string(analysis.Kind),
		payload,
		analysis.JobTitle,
		analysis.Company,
		analysis.Location,
		analysis.JobDescription,
		analysis.CreatedAt,
	)
	return err
}

// GetByIDForUser fetches an analysis by id and owner in a single query.
func (r *PGRepo) GetByIDForUser(ctx context.Context, analysisID, userID string) (Analysis, error) {
	const query = `
SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1 AND user_id = $2
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser lists analyses newest-first along with the owner's total count.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a              Analysis
		fileID         sql.NullString
		kind           string
		result         []byte
		jobTitle       sql.NullString
		company        sql.NullString
		location       sql.NullString
		jobDescription sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.FileName,
		&fileID,
		&kind,
		&result,
		&jobTitle,
		&company,
		&location,
		&jobDescription,
		&a.CreatedAt,
	); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(result, &a.Result); err != nil {
		return Analysis{}, fmt.Errorf("decode result for analysis %s: %w", a.ID, err)
	}
	if fileID.Valid {
		id := fileID.String
		a.FileID = &id
	}
	a.Kind = prompt.ParseMode(kind)
	if a.Kind == "" {
		a.Kind = prompt.ModeBasic
	}
	a.JobTitle = jobTitle.String
	a.Company = company.String
	a.Location = location.String
	a.JobDescription = jobDescription.String
	return a, nil
}
