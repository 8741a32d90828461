package analyses

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/extract"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
	"resume-scorer/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
	// ScoreLimit guards the score route. Nil disables limiting.
	ScoreLimit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, scoreLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, ScoreLimit: scoreLimit}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	score := []gin.HandlerFunc{h.score}
	if h.ScoreLimit != nil {
		score = append([]gin.HandlerFunc{h.ScoreLimit}, score...)
	}
	rg.POST("/score", score...)
	rg.POST("/analyses", h.save)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

func (h *Handler) score(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return
	}

	events, mode, err := h.Svc.Score(c.Request.Context(), ScoreInput{
		UserID:   userID,
		FileName: fileHeader.Filename,
		Data:     data,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Job: prompt.JobContext{
			Title:       c.PostForm("jobTitle"),
			Company:     c.PostForm("company"),
			Location:    c.PostForm("location"),
			Description: c.PostForm("description"),
			Kind:        prompt.ParseMode(c.PostForm("analysisType")),
		},
	})
	if err != nil {
		var extractErr *extract.Error
		switch {
		case errors.As(err, &extractErr):
			respond.Error(c, http.StatusBadRequest, string(extractErr.Kind), extractErr.Error(), nil)
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		case errors.Is(err, scoring.ErrScoringUnavailable):
			respond.Error(c, http.StatusInternalServerError, "scoring_unavailable", "The scoring service is unavailable. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to score resume", nil)
		}
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Analysis-Mode", string(mode))
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for ev := range events {
		var line any
		switch {
		case ev.Partial != nil:
			line = ev.Partial
		case ev.Final != nil:
			line = finalLine{Final: true, Result: ev.Final}
		case ev.Err != nil:
			line = finalLine{Final: true, Error: streamError(ev.Err)}
		}
		if err := enc.Encode(line); err != nil {
			telemetry.Warn("analysis.stream_write", map[string]any{"user_id": userID, "error": err})
			return
		}
		c.Writer.Flush()
	}
}

type finalLine struct {
	Final  bool               `json:"final"`
	Result *scoring.Result    `json:"result,omitempty"`
	Error  *respond.ErrorBody `json:"error,omitempty"`
}

func streamError(err error) *respond.ErrorBody {
	if errors.Is(err, scoring.ErrMalformedResult) {
		return &respond.ErrorBody{Code: "malformed_result", Message: "The analysis could not be completed because the model returned an invalid result. Please try again."}
	}
	return &respond.ErrorBody{Code: "scoring_unavailable", Message: "The scoring service failed while analyzing your resume. Please try again."}
}

type saveRequest struct {
	FileName     string          `json:"fileName"`
	FileID       *string         `json:"fileId"`
	AnalysisType string          `json:"analysisType"`
	Result       json.RawMessage `json:"result"`
	JobTitle     string          `json:"jobTitle"`
	Company      string          `json:"company"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
}

func (h *Handler) save(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(userID) == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	if len(req.Result) == 0 || string(req.Result) == "null" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "result is required", nil)
		return
	}
	kind := prompt.ParseMode(req.AnalysisType)
	result, err := scoring.ParseResult(req.Result, prompt.SelectMode(kind, req.Description))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	analysis, err := h.Svc.Save(c.Request.Context(), SaveInput{
		UserID:         userID,
		FileName:       req.FileName,
		FileID:         req.FileID,
		Kind:           kind,
		Result:         result,
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		Location:       req.Location,
		JobDescription: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		case errors.Is(err, ErrInvalidInput), errors.Is(err, scoring.ErrInvalidResult):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "persistence_error", "failed to save analysis", nil)
		}
		return
	}

	c.Set(middleware.AnalysisIDKey, analysis.ID)
	respond.Created(c, gin.H{"success": true, "analysisId": analysis.ID})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.OK(c, gin.H{"success": true, "analysis": analysis})
}

type listItem struct {
	ID           string      `json:"id"`
	FileName     string      `json:"fileName"`
	FileID       *string     `json:"fileId,omitempty"`
	AnalysisType prompt.Mode `json:"analysisType"`
	Overall      float64     `json:"overall"`
	Summary      string      `json:"summary"`
	JobTitle     string      `json:"jobTitle,omitempty"`
	Company      string      `json:"company,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	analyses, total, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	items := make([]listItem, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, listItem{
			ID:           a.ID,
			FileName:     a.FileName,
			FileID:       a.FileID,
			AnalysisType: a.Kind,
			Overall:      a.Result.Overall,
			Summary:      a.Result.Summary,
			JobTitle:     a.JobTitle,
			Company:      a.Company,
			CreatedAt:    a.CreatedAt,
		})
	}

	respond.OK(c, gin.H{
		"success":  true,
		"analyses": items,
		"pagination": gin.H{
			"total":   total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": offset+len(items) < total,
		},
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
