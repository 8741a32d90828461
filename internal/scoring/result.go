package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"resume-scorer/internal/prompt"
)

// Scores are the five numeric dimensions, each in [0,100].
type Scores struct {
	Overall          float64 `json:"overall"`
	Content          float64 `json:"content"`
	Keywords         float64 `json:"keywords"`
	Format           float64 `json:"format"`
	ATSCompatibility float64 `json:"atsCompatibility"`
}

// KeywordMatch records whether a job-description term is covered by the resume.
type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Found   bool   `json:"found"`
	Context string `json:"context,omitempty"`
}

// Result is a validated scoring outcome.
type Result struct {
	Scores
	Strengths    []string       `json:"strengths"`
	Improvements []string       `json:"improvements"`
	KeywordMatch []KeywordMatch `json:"keywordMatch,omitempty"`
	Summary      string         `json:"summary"`
}

// ErrInvalidResult is wrapped by every validation failure.
var ErrInvalidResult = errors.New("invalid scoring result")

type wireScores struct {
	Overall          *float64 `json:"overall"`
	Content          *float64 `json:"content"`
	Keywords         *float64 `json:"keywords"`
	Format           *float64 `json:"format"`
	ATSCompatibility *float64 `json:"atsCompatibility"`
}

type wireKeyword struct {
	Keyword *string `json:"keyword"`
	Found   *bool   `json:"found"`
	Context string  `json:"context"`
}

type wireResult struct {
	wireScores
	Strengths    []string      `json:"strengths"`
	Improvements []string      `json:"improvements"`
	KeywordMatch []wireKeyword `json:"keywordMatch"`
	Summary      *string       `json:"summary"`
}

// ParseResult decodes and validates model output. In basic mode any
// keywordMatch list is dropped so it only appears for job-matched analyses.
func ParseResult(raw []byte, mode prompt.Mode) (Result, error) {
	var w wireResult
	if err := decodeStrict(raw, &w); err != nil {
		return Result{}, err
	}
	scores, err := w.wireScores.validate()
	if err != nil {
		return Result{}, err
	}
	if w.Strengths == nil || w.Improvements == nil {
		return Result{}, fmt.Errorf("%w: strengths and improvements are required", ErrInvalidResult)
	}
	if w.Summary == nil || strings.TrimSpace(*w.Summary) == "" {
		return Result{}, fmt.Errorf("%w: summary is required", ErrInvalidResult)
	}

	res := Result{
		Scores:       scores,
		Strengths:    w.Strengths,
		Improvements: w.Improvements,
		Summary:      *w.Summary,
	}
	if mode == prompt.ModeDetailed {
		for i, k := range w.KeywordMatch {
			if k.Keyword == nil || strings.TrimSpace(*k.Keyword) == "" || k.Found == nil {
				return Result{}, fmt.Errorf("%w: keywordMatch[%d] needs keyword and found", ErrInvalidResult, i)
			}
			res.KeywordMatch = append(res.KeywordMatch, KeywordMatch{Keyword: *k.Keyword, Found: *k.Found, Context: k.Context})
		}
	}
	return res, nil
}

// ParseScores decodes and validates a bare score snapshot.
func ParseScores(raw []byte) (Scores, error) {
	var w wireScores
	if err := decodeStrict(raw, &w); err != nil {
		return Scores{}, err
	}
	return w.validate()
}

// Validate checks a Result that did not come through ParseResult, such as a
// client-submitted result on save.
func Validate(r Result) error {
	for _, f := range r.Scores.fields() {
		if err := checkScore(f.name, f.value); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("%w: summary is required", ErrInvalidResult)
	}
	for i, k := range r.KeywordMatch {
		if strings.TrimSpace(k.Keyword) == "" {
			return fmt.Errorf("%w: keywordMatch[%d] needs a keyword", ErrInvalidResult, i)
		}
	}
	return nil
}

func (w wireScores) validate() (Scores, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"overall", w.Overall},
		{"content", w.Content},
		{"keywords", w.Keywords},
		{"format", w.Format},
		{"atsCompatibility", w.ATSCompatibility},
	}
	for _, f := range fields {
		if f.v == nil {
			return Scores{}, fmt.Errorf("%w: %s is required", ErrInvalidResult, f.name)
		}
		if err := checkScore(f.name, *f.v); err != nil {
			return Scores{}, err
		}
	}
	return Scores{
		Overall:          *w.Overall,
		Content:          *w.Content,
		Keywords:         *w.Keywords,
		Format:           *w.Format,
		ATSCompatibility: *w.ATSCompatibility,
	}, nil
}

type namedScore struct {
	name  string
	value float64
}

func (s Scores) fields() []namedScore {
	return []namedScore{
		{"overall", s.Overall},
		{"content", s.Content},
		{"keywords", s.Keywords},
		{"format", s.Format},
		{"atsCompatibility", s.ATSCompatibility},
	}
}

func checkScore(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %s=%v outside [0,100]", ErrInvalidResult, name, v)
	}
	return nil
}

// decodeStrict decodes exactly one JSON value, after removing a markdown fence.
func decodeStrict(raw []byte, v any) error {
	clean := cleanJSON(string(raw))
	if clean == "" {
		return fmt.Errorf("%w: empty response", ErrInvalidResult)
	}
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", ErrInvalidResult)
	}
	return nil
}

// cleanJSON strips an optional ```json fence some models wrap output in.
func cleanJSON(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	}
	return strings.TrimSpace(clean)
}
