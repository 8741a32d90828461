package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	sharedauth "resume-scorer/internal/shared/auth"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/storage/object"
)

type blob struct {
	data        string
	contentType string
}

type fakeStore struct {
	blobs map[string]blob
	err   error
}

func (s *fakeStore) Open(ctx context.Context, location string) (*object.Object, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.blobs[location]
	if !ok {
		return nil, errors.New("404 from blob store")
	}
	return &object.Object{
		Body:        io.NopCloser(strings.NewReader(b.data)),
		ContentType: b.contentType,
		Size:        int64(len(b.data)),
	}, nil
}

var testLocations = LocationPolicy{
	Bucket: "bucket",
	Prefix: "uploads",
	Hosts:  []string{"x", ".example.com"},
}

var fixedNow = time.Date(2025, 4, 5, 6, 7, 8, 9_000_000, time.UTC)

func newTestService(store object.Store) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	clock := fixedNow
	return &Service{
		Repo:      repo,
		Store:     store,
		Locations: testLocations,
		Now: func() time.Time {
			now := clock
			clock = clock.Add(time.Millisecond)
			return now
		},
	}, repo
}

func setupRouter(t *testing.T, store object.Store) (*gin.Engine, *Service, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	svc, repo := newTestService(store)
	router := gin.New()
	router.Use(middleware.Auth())
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, svc, repo
}

func authorize(t *testing.T, req *http.Request, userID string) {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
