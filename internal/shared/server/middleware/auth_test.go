package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-scorer/internal/shared/auth"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	router.GET("/api/v1/analyses/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.OPTIONS("/api/v1/analyses/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyses/a-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthRouter()

	token, err := auth.SignJWT(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"userId":"user-1"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthSkipsPublicPaths(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
