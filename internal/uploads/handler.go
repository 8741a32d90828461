package uploads

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-scorer/internal/extract"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
	"resume-scorer/internal/shared/storage/object/s3"
	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/shared/util"
)

const (
	maxUploadBytes = 10 << 20
	presignExpires = 15 * time.Minute
)

var allowedContentTypes = map[string]struct{}{
	extract.MimePDF:       {},
	extract.MimeDOC:       {},
	extract.MimeDOCX:      {},
	extract.MimePlainText: {},
}

// Presigner issues short-lived upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (s3.PresignedUpload, error)
}

// Handler issues presigned PUT URLs. The client uploads directly to the
// bucket and then confirms the upload through the files endpoint.
type Handler struct {
	Presigner Presigner
}

// NewHandler constructs a Handler. A nil presigner makes the route report
// that uploads are not configured.
func NewHandler(p Presigner) *Handler {
	return &Handler{Presigner: p}
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	Path             string `json:"path"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = extract.NormalizeMimeType(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", nil)
		return
	}
	if h.Presigner == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "uploads not configured", nil)
		return
	}

	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	key := path.Join(userID, uuid.NewString()+"-"+sanitized)

	out, err := h.Presigner.PresignPut(c.Request.Context(), key, req.ContentType, presignExpires)
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.OK(c, presignResponse{
		UploadURL:        out.URL,
		Path:             out.Location,
		ExpiresInSeconds: int64(out.ExpiresIn.Seconds()),
	})
}
