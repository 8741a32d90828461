package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-scorer/internal/extract"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/telemetry"
)

// Service contains business logic for scoring and storing analyses.
type Service struct {
	Repo   Repo
	Scorer *scoring.Scorer
	Now    func() time.Time
}

// ScoreInput is one uploaded resume plus optional job context.
type ScoreInput struct {
	UserID   string
	FileName string
	Data     []byte
	MimeType string
	Job      prompt.JobContext
}

// Score extracts the resume text and starts a scoring stream. Extraction
// failures are returned as *extract.Error before any model call is made.
func (s *Service) Score(ctx context.Context, in ScoreInput) (<-chan scoring.Event, prompt.Mode, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, "", ErrUnauthorized
	}
	text, err := extract.ExtractText(ctx, in.Data, in.MimeType)
	if err != nil {
		metrics.IncExtractionFailed()
		telemetry.Warn("analysis.extract_failed", map[string]any{
			"user_id":   in.UserID,
			"file_name": in.FileName,
			"mime_type": in.MimeType,
			"error":     err,
		})
		return nil, "", err
	}
	telemetry.Info("analysis.extracted", map[string]any{
		"user_id":   in.UserID,
		"file_name": in.FileName,
		"chars":     len(text),
	})

	p := prompt.Build(text, in.Job)
	events, err := s.Scorer.Score(ctx, p)
	if err != nil {
		return nil, p.Mode, err
	}
	return events, p.Mode, nil
}

// SaveInput is the payload for persisting a completed scoring run.
type SaveInput struct {
	UserID         string
	FileName       string
	FileID         *string
	Kind           prompt.Mode
	Result         scoring.Result
	JobTitle       string
	Company        string
	Location       string
	JobDescription string
}

// Save validates the result and creates exactly one immutable record.
func (s *Service) Save(ctx context.Context, in SaveInput) (Analysis, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Analysis{}, ErrUnauthorized
	}
	if strings.TrimSpace(in.FileName) == "" {
		return Analysis{}, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if in.FileID != nil {
		if _, err := uuid.Parse(*in.FileID); err != nil {
			return Analysis{}, fmt.Errorf("%w: fileId must be a uuid", ErrInvalidInput)
		}
	}
	if err := scoring.Validate(in.Result); err != nil {
		return Analysis{}, err
	}

	kind := prompt.SelectMode(in.Kind, in.JobDescription)
	result := in.Result
	if kind == prompt.ModeBasic {
		result.KeywordMatch = nil
	}

	analysis := Analysis{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		FileName:       strings.TrimSpace(in.FileName),
		FileID:         in.FileID,
		Kind:           kind,
		Result:         result,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		Company:        strings.TrimSpace(in.Company),
		Location:       strings.TrimSpace(in.Location),
		JobDescription: strings.TrimSpace(in.JobDescription),
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("create analysis: %w", err)
	}
	metrics.IncAnalysesSaved()
	telemetry.Info("analysis.saved", map[string]any{
		"analysis_id": analysis.ID,
		"user_id":     analysis.UserID,
		"kind":        analysis.Kind,
		"overall":     analysis.Result.Overall,
	})
	return analysis, nil
}

// Get returns the owner's analysis. Unknown ids and foreign records are both
// ErrNotFound.
func (s *Service) Get(ctx context.Context, analysisID, userID string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, ErrUnauthorized
	}
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(analysisID); err != nil {
		return Analysis{}, ErrNotFound
	}
	analysis, err := s.Repo.GetByIDForUser(ctx, analysisID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	return analysis, nil
}

// List returns a page of the user's analyses and the total count.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrUnauthorized
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
