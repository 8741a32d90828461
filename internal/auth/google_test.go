package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "resume-scorer/internal/shared/auth"
)

func setupRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestStartRequiresConfiguration(t *testing.T) {
	router := setupRouter(NewGoogleService(GoogleConfig{}))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestStartRedirectsWithState(t *testing.T) {
	svc := NewGoogleService(GoogleConfig{ClientID: "cid", ClientSecret: "secret", RedirectURL: "http://localhost:8080/api/v1/auth/google/callback"})
	router := setupRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" || loc.Query().Get("client_id") != "cid" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	if !svc.states.consume(state, time.Now()) {
		t.Fatalf("expected issued state to be consumable")
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	router := setupRouter(NewGoogleService(GoogleConfig{ClientID: "cid", ClientSecret: "secret", RedirectURL: "http://x"}))

	for _, target := range []string{
		"/api/v1/auth/google/callback",
		"/api/v1/auth/google/callback?state=nope&code=abc",
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.Code)
		}
	}
}

func TestStateIsSingleUseAndExpires(t *testing.T) {
	store := newStateStore()
	now := time.Now()
	store.put("a", now.Add(time.Minute))
	store.put("b", now.Add(-time.Second))

	if !store.consume("a", now) {
		t.Fatalf("expected fresh state to be accepted")
	}
	if store.consume("a", now) {
		t.Fatalf("expected state to be single use")
	}
	if store.consume("b", now) {
		t.Fatalf("expected expired state to be rejected")
	}
}

func TestFetchProfileFallsBackToID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"123","email":"a@example.com","name":"A"}`))
	}))
	defer srv.Close()

	svc := NewGoogleService(GoogleConfig{})
	svc.userInfoURL = srv.URL
	p, err := svc.fetchProfile(context.Background(), srv.Client())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Sub != "123" || p.Email != "a@example.com" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestIssueSignsPrefixedSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewGoogleService(GoogleConfig{})

	token, err := svc.issue(googleProfile{Sub: "42", Email: " a@example.com "})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := sharedauth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "google:42" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	redirect, err := appendToken("http://localhost:5173/auth?x=1", token)
	if err != nil || !strings.Contains(redirect, "token=") || !strings.Contains(redirect, "x=1") {
		t.Fatalf("unexpected redirect %q (%v)", redirect, err)
	}
}
