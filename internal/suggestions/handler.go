package suggestions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/analyses"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the suggestions service.
type Handler struct {
	Svc   *Service
	Limit gin.HandlerFunc
}

// NewHandler constructs a Handler. limit may be nil.
func NewHandler(svc *Service, limit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Limit: limit}
}

// RegisterRoutes attaches suggestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	chain := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if h.Limit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{h.Limit, fn}
	}
	rg.POST("/analyses/:id/suggestions", chain(h.suggest)...)
	rg.POST("/analyses/:id/optimize", chain(h.optimize)...)
}

func (h *Handler) suggest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	var req SuggestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	out, err := h.Svc.Suggest(c.Request.Context(), userID, analysisID, req)
	if err != nil {
		writeError(c, err, "failed to generate suggestions")
		return
	}
	respond.OK(c, gin.H{"success": true, "suggestions": out.Suggestions, "source": out.Source})
}

func (h *Handler) optimize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	scores, err := h.Svc.Optimize(c.Request.Context(), userID, analysisID, req)
	if err != nil {
		writeError(c, err, "failed to optimize resume")
		return
	}
	respond.OK(c, gin.H{"success": true, "scores": scores})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, analyses.ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
	case errors.Is(err, analyses.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, analyses.ErrInvalidInput), errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, scoring.ErrMalformedResult):
		respond.Error(c, http.StatusInternalServerError, "malformed_result", "The model returned an invalid response. Please try again.", nil)
	case errors.Is(err, scoring.ErrScoringUnavailable):
		respond.Error(c, http.StatusInternalServerError, "scoring_unavailable", "The scoring service is unavailable. Please try again.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
