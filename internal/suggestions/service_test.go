package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-scorer/internal/analyses"
	"resume-scorer/internal/llm"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
)

type cannedProvider struct {
	body  string
	err   error
	calls int
	last  llm.Request
}

func (p *cannedProvider) Name() string { return "canned" }

func (p *cannedProvider) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	out := make(chan llm.Chunk, 1)
	out <- llm.Chunk{Text: p.body}
	close(out)
	return out, nil
}

type stubFiles struct {
	text string
	err  error
}

func (s stubFiles) ResumeText(ctx context.Context, fileID, userID string) (string, error) {
	return s.text, s.err
}

func seedAnalysis(t *testing.T, fileID *string) (*analyses.Service, analyses.Analysis) {
	t.Helper()
	svc := &analyses.Service{Repo: analyses.NewMemoryRepo(), Now: func() time.Time { return time.Unix(1700000000, 0) }}
	a, err := svc.Save(context.Background(), analyses.SaveInput{
		UserID:   "owner",
		FileName: "resume.pdf",
		FileID:   fileID,
		Kind:     prompt.ModeDetailed,
		Result: scoring.Result{
			Scores:       scoring.Scores{Overall: 60, Content: 58, Keywords: 50, Format: 75, ATSCompatibility: 70},
			Strengths:    []string{"Go"},
			Improvements: []string{"Add measurable outcomes", "Fix inconsistent bullet formatting"},
			KeywordMatch: []scoring.KeywordMatch{{Keyword: "Kafka", Found: false}},
			Summary:      "Decent.",
		},
		JobDescription: "Go, Kafka",
	})
	require.NoError(t, err)
	return svc, a
}

func TestSuggestDefaultsWithoutModel(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	provider := &cannedProvider{}
	svc := &Service{Analyses: store, Scorer: scoring.NewScorer(provider)}

	out, err := svc.Suggest(context.Background(), "owner", a.ID, SuggestRequest{})
	require.NoError(t, err)
	assert.Equal(t, SourceDerived, out.Source)
	assert.Len(t, out.Suggestions.Content, 1)
	assert.Len(t, out.Suggestions.Format, 1)
	assert.Len(t, out.Suggestions.Keywords, 1)
	assert.Zero(t, provider.calls)
}

func TestSuggestTailoredUsesModel(t *testing.T) {
	fileID := "0b7c4c1a-6a3b-4f3e-9b8f-2d1c0e9f8a7b"
	store, a := seedAnalysis(t, &fileID)
	provider := &cannedProvider{body: `{"content":[{"title":"Lead with impact","description":"Open bullets with the result.","before":"Worked on APIs","after":"Cut API latency 40%","impact":"HIGH"},{"title":"Lead with impact","description":"Again."}],"keywords":[],"format":[],"custom":[{"title":"Mention on-call","description":"Platform roles value it.","impact":"whatever"}]}`}
	svc := &Service{Analyses: store, Files: stubFiles{text: "RESUME BODY TEXT"}, Scorer: scoring.NewScorer(provider)}

	out, err := svc.Suggest(context.Background(), "owner", a.ID, SuggestRequest{
		TargetRole:  "Platform Engineer",
		Preferences: prompt.Preferences{QuantifyAchievements: true},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceModel, out.Source)
	require.Len(t, out.Suggestions.Content, 2)
	assert.Equal(t, "content-lead-with-impact", out.Suggestions.Content[0].ID)
	assert.Equal(t, "content-lead-with-impact-2", out.Suggestions.Content[1].ID)
	assert.Equal(t, ImpactHigh, out.Suggestions.Content[0].Impact)
	assert.Equal(t, ImpactMedium, out.Suggestions.Custom[0].Impact)
	assert.NotNil(t, out.Suggestions.Keywords)

	assert.Contains(t, provider.last.Instruction, "RESUME BODY TEXT")
	assert.Contains(t, provider.last.Instruction, "Platform Engineer")
	assert.Contains(t, provider.last.Instruction, "Go, Kafka")
}

func TestSuggestMalformedModelOutput(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	svc := &Service{Analyses: store, Scorer: scoring.NewScorer(&cannedProvider{body: `{"content":[]}`})}

	_, err := svc.Suggest(context.Background(), "owner", a.ID, SuggestRequest{TargetRole: "SRE"})
	assert.ErrorIs(t, err, scoring.ErrMalformedResult)
}

func TestSuggestForeignAnalysis(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	svc := &Service{Analyses: store, Scorer: scoring.NewScorer(&cannedProvider{})}

	_, err := svc.Suggest(context.Background(), "intruder", a.ID, SuggestRequest{})
	assert.ErrorIs(t, err, analyses.ErrNotFound)
}

func TestOptimizeRescores(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	provider := &cannedProvider{body: `{"overall":72,"content":70,"keywords":66,"format":80,"atsCompatibility":74}`}
	svc := &Service{Analyses: store, Files: stubFiles{err: errors.New("unused")}, Scorer: scoring.NewScorer(provider)}

	scores, err := svc.Optimize(context.Background(), "owner", a.ID, OptimizeRequest{
		Accepted: []prompt.AcceptedSuggestion{{Category: "content", Title: "Add measurable outcomes", Description: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, scoring.Scores{Overall: 72, Content: 70, Keywords: 66, Format: 80, ATSCompatibility: 74}, scores)
	assert.Contains(t, provider.last.Instruction, "Add measurable outcomes")

	stored, err := store.Get(context.Background(), a.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, a.Result.Scores, stored.Result.Scores, "optimization must not rewrite the stored analysis")
}

func TestOptimizeEdgeCases(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	provider := &cannedProvider{body: `{"overall":"high"}`}
	svc := &Service{Analyses: store, Scorer: scoring.NewScorer(provider)}
	ctx := context.Background()

	scores, err := svc.Optimize(ctx, "owner", a.ID, OptimizeRequest{})
	require.NoError(t, err)
	assert.Equal(t, a.Result.Scores, scores)
	assert.Zero(t, provider.calls)

	_, err = svc.Optimize(ctx, "owner", a.ID, OptimizeRequest{Accepted: []prompt.AcceptedSuggestion{{Category: "style", Title: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Optimize(ctx, "owner", a.ID, OptimizeRequest{Accepted: []prompt.AcceptedSuggestion{{Category: "format", Title: "x"}}})
	assert.ErrorIs(t, err, scoring.ErrMalformedResult)

	provider.err = errors.New("quota exceeded")
	_, err = svc.Optimize(ctx, "owner", a.ID, OptimizeRequest{Accepted: []prompt.AcceptedSuggestion{{Category: "format", Title: "x"}}})
	assert.ErrorIs(t, err, scoring.ErrScoringUnavailable)
}
