package files

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
	"resume-scorer/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the file service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches file routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files", h.confirm)
	rg.GET("/files", h.list)
	rg.GET("/files/:id/content", h.content)
}

func (h *Handler) confirm(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.OriginalName = strings.TrimSpace(req.OriginalName)
	req.Path = strings.TrimSpace(req.Path)
	req.MimeType = strings.TrimSpace(req.MimeType)
	if field := req.missing(); field != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", field+" is required", []map[string]string{
			{"field": field, "issue": "required"},
		})
		return
	}

	f, err := h.Svc.Confirm(c.Request.Context(), userID, ConfirmInput{
		OriginalName: req.OriginalName,
		Location:     req.Path,
		MimeType:     req.MimeType,
		Size:         *req.Size,
		Extension:    req.Extension,
		IsPublic:     req.IsPublic,
		Description:  req.Description,
		Tags:         req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "persistence_error", "failed to register file", nil)
		}
		return
	}

	c.Set(middleware.FileIDKey, f.ID)
	respond.Created(c, gin.H{"success": true, "file": f})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	var isPublic *bool
	if v := c.Query("isPublic"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "isPublic must be true or false", nil)
			return
		}
		isPublic = &parsed
	}

	items, total, err := h.Svc.List(c.Request.Context(), userID, isPublic, limit, offset)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list files", nil)
		return
	}

	respond.OK(c, listResponse{
		Files: items,
		Pagination: pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
		},
	})
}

func (h *Handler) content(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("id")
	c.Set(middleware.FileIDKey, fileID)

	f, obj, err := h.Svc.Open(c.Request.Context(), fileID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoLocation):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		default:
			telemetry.Error("file.content_failed", map[string]any{"file_id": fileID, "error": err})
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "failed to fetch file content", nil)
		}
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = f.MimeType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := obj.Size
	if size <= 0 {
		size = -1
	}

	c.DataFromReader(http.StatusOK, size, contentType, obj.Body, map[string]string{
		"Content-Disposition": `inline; filename="` + strings.ReplaceAll(f.OriginalName, `"`, "") + `"`,
		"Cache-Control":       "public, max-age=3600",
	})
}
