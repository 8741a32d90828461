// Package optimize holds the client-side optimization session: the score
// snapshot, the suggestions on offer and which of them the user accepted.
// Transitions on Session are pure; Controller owns one session and performs
// the network calls.
package optimize

import (
	"slices"

	"resume-scorer/internal/analyses"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/suggestions"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusOptimizing Status = "optimizing"
	StatusError      Status = "error"
)

// View is the pane the user is looking at.
type View string

const (
	ViewAnalysis View = "analysis"
	ViewPreview  View = "preview"
)

// Session is a snapshot of one user's optimization of one analysis.
type Session struct {
	AnalysisID  string
	Status      Status
	Message     string
	Scores      scoring.Scores
	Original    scoring.Scores
	Suggestions suggestions.Set
	// Loaded distinguishes an empty category from suggestions not fetched yet.
	Loaded   bool
	Accepted map[suggestions.Category][]int
	Applied  bool
	View     View

	JobDescription string
	TargetRole     string
	Preferences    prompt.Preferences
}

// NewSession returns a session waiting for its first load.
func NewSession(analysisID string) Session {
	return Session{
		AnalysisID: analysisID,
		Status:     StatusLoading,
		Accepted:   emptyAccepted(),
		View:       ViewAnalysis,
	}
}

func emptyAccepted() map[suggestions.Category][]int {
	out := make(map[suggestions.Category][]int, len(suggestions.Categories))
	for _, c := range suggestions.Categories {
		out[c] = []int{}
	}
	return out
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	accepted := make(map[suggestions.Category][]int, len(s.Accepted))
	for c, idx := range s.Accepted {
		accepted[c] = slices.Clone(idx)
	}
	s.Accepted = accepted
	s.Suggestions = suggestions.Set{
		Content:  slices.Clone(s.Suggestions.Content),
		Keywords: slices.Clone(s.Suggestions.Keywords),
		Format:   slices.Clone(s.Suggestions.Format),
		Custom:   slices.Clone(s.Suggestions.Custom),
	}
	return s
}

// FromAnalysis starts a fresh round on top of a fetched analysis. Job context
// and preference overrides carry over from s.
func (s Session) FromAnalysis(a analyses.Analysis, set suggestions.Set) Session {
	next := s.Clone()
	next.Status = StatusReady
	next.Message = ""
	next.Scores = a.Result.Scores
	next.Original = a.Result.Scores
	next.Suggestions = normalizeSet(set)
	next.Loaded = true
	next.Accepted = emptyAccepted()
	next.Applied = false
	next.View = ViewAnalysis
	return next
}

// Failed moves the session into the error state.
func (s Session) Failed(message string) Session {
	next := s.Clone()
	next.Status = StatusError
	next.Message = message
	return next
}

// Toggle flips membership of index in the accepted set for category.
// Unknown categories and negative indices leave the session unchanged.
func (s Session) Toggle(category suggestions.Category, index int) Session {
	if _, ok := suggestions.ParseCategory(string(category)); !ok || index < 0 {
		return s
	}
	next := s.Clone()
	set := next.Accepted[category]
	if i, found := slices.BinarySearch(set, index); found {
		set = slices.Delete(set, i, i+1)
	} else {
		set = slices.Insert(set, i, index)
	}
	next.Accepted[category] = set
	return next
}

// IsAccepted reports whether index is in the accepted set for category.
func (s Session) IsAccepted(category suggestions.Category, index int) bool {
	_, found := slices.BinarySearch(s.Accepted[category], index)
	return found
}

// AcceptedSuggestions resolves the accepted indices against the current
// suggestion lists in category order. Indices past the end of a list are
// skipped.
func (s Session) AcceptedSuggestions() []prompt.AcceptedSuggestion {
	var out []prompt.AcceptedSuggestion
	for _, c := range suggestions.Categories {
		list := s.Suggestions.List(c)
		for _, i := range s.Accepted[c] {
			if i < 0 || i >= len(list) {
				continue
			}
			item := list[i]
			out = append(out, prompt.AcceptedSuggestion{
				Category:    string(c),
				Title:       item.Title,
				Description: item.Description,
				After:       item.After,
			})
		}
	}
	return out
}

// Optimizing marks an apply as in flight.
func (s Session) Optimizing() Session {
	next := s.Clone()
	next.Status = StatusOptimizing
	next.Message = ""
	return next
}

// ApplyResult replaces the score snapshot with the re-scored one and shows
// the preview.
func (s Session) ApplyResult(scores scoring.Scores) Session {
	next := s.Clone()
	next.Status = StatusReady
	next.Message = ""
	next.Scores = scores
	next.Applied = true
	next.View = ViewPreview
	return next
}

// ApplyFailed records message and leaves the scores untouched.
func (s Session) ApplyFailed(message string) Session {
	next := s.Clone()
	next.Status = StatusReady
	next.Message = message
	return next
}

// Reset restores the original snapshot and clears every accepted set.
func (s Session) Reset() Session {
	next := s.Clone()
	next.Scores = s.Original
	next.Applied = false
	next.Accepted = emptyAccepted()
	next.View = ViewAnalysis
	next.Message = ""
	if next.Status == StatusOptimizing {
		next.Status = StatusReady
	}
	return next
}

// PreferenceOverrides is a partial preferences update. Nil fields keep the
// current value.
type PreferenceOverrides struct {
	EmphasizeKeywords    *bool
	QuantifyAchievements *bool
	ImproveFormatting    *bool
	TailorSummary        *bool
}

// Merge applies the set fields of o to p.
func (o PreferenceOverrides) Merge(p prompt.Preferences) prompt.Preferences {
	if o.EmphasizeKeywords != nil {
		p.EmphasizeKeywords = *o.EmphasizeKeywords
	}
	if o.QuantifyAchievements != nil {
		p.QuantifyAchievements = *o.QuantifyAchievements
	}
	if o.ImproveFormatting != nil {
		p.ImproveFormatting = *o.ImproveFormatting
	}
	if o.TailorSummary != nil {
		p.TailorSummary = *o.TailorSummary
	}
	return p
}

// Customize replaces the job context and merges preference overrides. The
// caller reloads afterwards.
func (s Session) Customize(jobDescription, targetRole string, prefs PreferenceOverrides) Session {
	next := s.Clone()
	next.JobDescription = jobDescription
	next.TargetRole = targetRole
	next.Preferences = prefs.Merge(s.Preferences)
	next.Status = StatusLoading
	next.Message = ""
	return next
}

func normalizeSet(set suggestions.Set) suggestions.Set {
	if set.Content == nil {
		set.Content = []suggestions.Suggestion{}
	}
	if set.Keywords == nil {
		set.Keywords = []suggestions.Suggestion{}
	}
	if set.Format == nil {
		set.Format = []suggestions.Suggestion{}
	}
	if set.Custom == nil {
		set.Custom = []suggestions.Suggestion{}
	}
	return set
}
