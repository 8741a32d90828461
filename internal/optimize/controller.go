package optimize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/suggestions"
)

var (
	// ErrApplyInFlight rejects an apply while another is outstanding.
	ErrApplyInFlight = errors.New("optimization already in progress")
	// ErrNotLoaded rejects an apply before the analysis has loaded.
	ErrNotLoaded = errors.New("analysis not loaded")
	// ErrSuperseded is returned when a newer load or reset replaced the round
	// a call was working on. Its result is discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Controller owns one Session and serializes access to it. Network calls run
// without the lock held; their results are applied only if no newer load or
// reset happened meanwhile. At most one apply is outstanding at a time, even
// across reloads.
type Controller struct {
	api API

	mu       sync.Mutex
	session  Session
	round    uint64
	applying bool
	// cancelApply aborts the outstanding apply, if any.
	cancelApply context.CancelFunc
}

// NewController returns a controller for analysisID. Call Load before use.
func NewController(api API, analysisID string) *Controller {
	return &Controller{api: api, session: NewSession(analysisID)}
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Load fetches the analysis and suggestions tailored to the session's job
// context. A failed analysis fetch leaves the session in the error state. A
// failed suggestion fetch falls back to suggestions derived from the stored
// result.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.round++
	round := c.round
	c.abortApply()
	c.session = c.session.Clone()
	c.session.Status = StatusLoading
	c.session.Message = ""
	id := c.session.AnalysisID
	req := suggestions.SuggestRequest{
		JobDescription: c.session.JobDescription,
		TargetRole:     c.session.TargetRole,
		Preferences:    c.session.Preferences,
	}
	c.mu.Unlock()

	analysis, err := c.api.GetAnalysis(ctx, id)
	if err != nil {
		msg := LoadMessage(err)
		telemetry.Warn("optimize.load_failed", map[string]any{"analysis_id": id, "error": err})
		if !c.commit(round, func(s Session) Session { return s.Failed(msg) }) {
			return ErrSuperseded
		}
		return fmt.Errorf("load analysis: %w", err)
	}

	set := suggestions.Derive(analysis.Result)
	if resp, err := c.api.Suggest(ctx, id, req); err != nil {
		telemetry.Warn("optimize.suggestions_fallback", map[string]any{"analysis_id": id, "error": err})
	} else {
		set = resp.Suggestions
	}

	if !c.commit(round, func(s Session) Session { return s.FromAnalysis(analysis, set) }) {
		return ErrSuperseded
	}
	return nil
}

// Toggle flips one suggestion's membership in the accepted set.
func (c *Controller) Toggle(category suggestions.Category, index int) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = c.session.Toggle(category, index)
	return c.session.Clone()
}

// Apply submits the accepted suggestions and replaces the score snapshot with
// the result. Only one apply runs at a time.
func (c *Controller) Apply(ctx context.Context) (Session, error) {
	c.mu.Lock()
	if c.applying {
		c.mu.Unlock()
		return Session{}, ErrApplyInFlight
	}
	if !c.session.Loaded || c.session.Status == StatusError || c.session.Status == StatusLoading {
		c.mu.Unlock()
		return Session{}, ErrNotLoaded
	}
	ctx, cancel := context.WithCancel(ctx)
	c.applying = true
	c.cancelApply = cancel
	round := c.round
	c.session = c.session.Optimizing()
	id := c.session.AnalysisID
	req := suggestions.OptimizeRequest{
		Accepted:       c.session.AcceptedSuggestions(),
		JobDescription: c.session.JobDescription,
		TargetRole:     c.session.TargetRole,
		Preferences:    c.session.Preferences,
	}
	c.mu.Unlock()

	scores, err := c.api.Optimize(ctx, id, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	c.applying = false
	c.cancelApply = nil
	if round != c.round {
		return c.session.Clone(), ErrSuperseded
	}
	if err != nil {
		telemetry.Warn("optimize.apply_failed", map[string]any{"analysis_id": id, "error": err})
		c.session = c.session.ApplyFailed(applyMessage(err))
		return c.session.Clone(), fmt.Errorf("apply optimization: %w", err)
	}
	c.session = c.session.ApplyResult(scores)
	return c.session.Clone(), nil
}

// Reset restores the original scores and clears every accepted set. An apply
// still in flight is cancelled and its result discarded.
func (c *Controller) Reset() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applying {
		c.round++
		c.abortApply()
	}
	c.session = c.session.Reset()
	return c.session.Clone()
}

// Customize replaces the job context, merges preference overrides and
// reloads. Each call supersedes earlier ones.
func (c *Controller) Customize(ctx context.Context, jobDescription, targetRole string, prefs PreferenceOverrides) error {
	c.mu.Lock()
	c.session = c.session.Customize(jobDescription, targetRole, prefs)
	c.mu.Unlock()
	return c.Load(ctx)
}

// abortApply cancels the outstanding apply. The in-flight guard stays set
// until that call returns. Callers hold c.mu.
func (c *Controller) abortApply() {
	if c.cancelApply != nil {
		c.cancelApply()
	}
}

func (c *Controller) commit(round uint64, next func(Session) Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if round != c.round {
		return false
	}
	c.session = next(c.session)
	return true
}

// LoadMessage maps a load failure onto the message shown to the user.
func LoadMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Failed to load analysis."
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return "Please sign in to view this analysis."
	case http.StatusNotFound:
		return "Analysis not found."
	default:
		return fmt.Sprintf("Failed to load analysis (status %d).", apiErr.Status)
	}
}

func applyMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return "Please sign in to optimize this resume."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return "Failed to optimize resume. Please try again."
}
