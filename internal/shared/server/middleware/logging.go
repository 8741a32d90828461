package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/shared/telemetry"
)

// Context keys handlers set so the request log can carry resource ids.
const (
	AnalysisIDKey = "analysisId"
	FileIDKey     = "fileId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"analysis_id": c.GetString(AnalysisIDKey),
			"file_id":     c.GetString(FileIDKey),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
