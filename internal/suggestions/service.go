package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resume-scorer/internal/analyses"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/telemetry"
)

// Sources of a suggestion set.
const (
	SourceDerived = "derived"
	SourceModel   = "model"
)

// ErrInvalidInput reports a malformed request.
var ErrInvalidInput = errors.New("invalid input")

// AnalysisGetter loads an owner-scoped analysis.
type AnalysisGetter interface {
	Get(ctx context.Context, analysisID, userID string) (analyses.Analysis, error)
}

// ResumeSource re-extracts the text of a registered file.
type ResumeSource interface {
	ResumeText(ctx context.Context, fileID, userID string) (string, error)
}

// Service produces suggestions and re-scores resumes with accepted edits.
// Nothing it computes is persisted.
type Service struct {
	Analyses AnalysisGetter
	Files    ResumeSource
	Scorer   *scoring.Scorer
}

// SuggestRequest tailors suggestions. The zero value asks for the defaults
// derived from the stored result.
type SuggestRequest struct {
	JobDescription string             `json:"jobDescription"`
	TargetRole     string             `json:"targetRole"`
	Preferences    prompt.Preferences `json:"preferences"`
}

func (r SuggestRequest) tailored() bool {
	return strings.TrimSpace(r.JobDescription) != "" ||
		strings.TrimSpace(r.TargetRole) != "" ||
		r.Preferences != (prompt.Preferences{})
}

// SuggestResponse is a suggestion set and where it came from.
type SuggestResponse struct {
	Suggestions Set    `json:"suggestions"`
	Source      string `json:"source"`
}

// Suggest returns suggestions for the user's analysis. Untailored requests
// are answered from the stored result; tailored ones ask the model.
func (s *Service) Suggest(ctx context.Context, userID, analysisID string, req SuggestRequest) (SuggestResponse, error) {
	analysis, err := s.Analyses.Get(ctx, analysisID, userID)
	if err != nil {
		return SuggestResponse{}, err
	}
	if !req.tailored() {
		return SuggestResponse{Suggestions: Derive(analysis.Result), Source: SourceDerived}, nil
	}

	prior, err := json.Marshal(analysis.Result)
	if err != nil {
		return SuggestResponse{}, fmt.Errorf("marshal prior result: %w", err)
	}
	jobDescription := strings.TrimSpace(req.JobDescription)
	if jobDescription == "" {
		jobDescription = analysis.JobDescription
	}
	p := prompt.BuildSuggestions(prompt.SuggestionsInput{
		ResumeText:     s.resumeText(ctx, analysis),
		PriorResult:    prior,
		JobDescription: jobDescription,
		TargetRole:     strings.TrimSpace(req.TargetRole),
		Preferences:    req.Preferences,
	})
	raw, err := s.Scorer.Generate(ctx, p)
	if err != nil {
		return SuggestResponse{}, err
	}
	set, err := parseSet(raw)
	if err != nil {
		telemetry.Warn("suggestions.malformed", map[string]any{"analysis_id": analysisID, "error": err})
		return SuggestResponse{}, fmt.Errorf("%w: %w", scoring.ErrMalformedResult, err)
	}
	return SuggestResponse{Suggestions: set, Source: SourceModel}, nil
}

// OptimizeRequest carries the accepted edits to re-score.
type OptimizeRequest struct {
	Accepted       []prompt.AcceptedSuggestion `json:"accepted"`
	JobDescription string                      `json:"jobDescription"`
	TargetRole     string                      `json:"targetRole"`
	Preferences    prompt.Preferences          `json:"preferences"`
}

// Optimize re-scores the resume as if the accepted edits were applied. With
// nothing accepted the stored scores are returned unchanged.
func (s *Service) Optimize(ctx context.Context, userID, analysisID string, req OptimizeRequest) (scoring.Scores, error) {
	analysis, err := s.Analyses.Get(ctx, analysisID, userID)
	if err != nil {
		return scoring.Scores{}, err
	}
	for i, a := range req.Accepted {
		if _, ok := ParseCategory(a.Category); !ok {
			return scoring.Scores{}, fmt.Errorf("%w: accepted[%d] has unknown category %q", ErrInvalidInput, i, a.Category)
		}
		if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Description) == "" {
			return scoring.Scores{}, fmt.Errorf("%w: accepted[%d] is empty", ErrInvalidInput, i)
		}
	}
	if len(req.Accepted) == 0 {
		return analysis.Result.Scores, nil
	}

	original, err := json.Marshal(analysis.Result.Scores)
	if err != nil {
		return scoring.Scores{}, fmt.Errorf("marshal scores: %w", err)
	}
	jobDescription := strings.TrimSpace(req.JobDescription)
	if jobDescription == "" {
		jobDescription = analysis.JobDescription
	}
	p := prompt.BuildOptimization(prompt.OptimizationInput{
		ResumeText:     s.resumeText(ctx, analysis),
		OriginalScores: original,
		Accepted:       req.Accepted,
		JobDescription: jobDescription,
		TargetRole:     strings.TrimSpace(req.TargetRole),
		Preferences:    req.Preferences,
	})
	raw, err := s.Scorer.Generate(ctx, p)
	if err != nil {
		return scoring.Scores{}, err
	}
	scores, err := scoring.ParseScores(raw)
	if err != nil {
		return scoring.Scores{}, fmt.Errorf("%w: %w", scoring.ErrMalformedResult, err)
	}
	metrics.IncOptimizationsRun()
	telemetry.Info("suggestions.optimized", map[string]any{
		"analysis_id": analysisID,
		"accepted":    len(req.Accepted),
		"before":      analysis.Result.Overall,
		"after":       scores.Overall,
	})
	return scores, nil
}

// resumeText is best effort: without a file the prompts fall back to the
// prior result.
func (s *Service) resumeText(ctx context.Context, a analyses.Analysis) string {
	if s.Files == nil || a.FileID == nil || *a.FileID == "" {
		return ""
	}
	text, err := s.Files.ResumeText(ctx, *a.FileID, a.UserID)
	if err != nil {
		telemetry.Warn("suggestions.resume_text", map[string]any{"analysis_id": a.ID, "file_id": *a.FileID, "error": err})
		return ""
	}
	return text
}

type wireSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Impact      string `json:"impact"`
}

func parseSet(raw []byte) (Set, error) {
	var wire map[string][]wireSuggestion
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Set{}, fmt.Errorf("decode suggestions: %w", err)
	}
	set := NewSet()
	for _, c := range Categories {
		items, ok := wire[string(c)]
		if !ok {
			return Set{}, fmt.Errorf("missing category %q", c)
		}
		seen := make(map[string]int)
		for i, item := range items {
			title := strings.TrimSpace(item.Title)
			description := strings.TrimSpace(item.Description)
			if title == "" || description == "" {
				return Set{}, fmt.Errorf("%s[%d] needs title and description", c, i)
			}
			id := string(c) + "-" + slugify(title)
			if n := seen[id]; n > 0 {
				seen[id] = n + 1
				id = fmt.Sprintf("%s-%d", id, n+1)
			} else {
				seen[id] = 1
			}
			set.add(c, Suggestion{
				ID:          id,
				Title:       title,
				Description: description,
				Before:      strings.TrimSpace(item.Before),
				After:       strings.TrimSpace(item.After),
				Impact:      normalizeImpact(item.Impact),
			})
		}
	}
	return set, nil
}

func normalizeImpact(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ImpactHigh:
		return ImpactHigh
	case ImpactLow:
		return ImpactLow
	default:
		return ImpactMedium
	}
}
