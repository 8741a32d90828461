package analyses

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-scorer/internal/llm"
	"resume-scorer/internal/scoring"
	sharedauth "resume-scorer/internal/shared/auth"
	"resume-scorer/internal/shared/server/middleware"
)

const (
	basicResult    = `{"overall":74,"content":72,"keywords":60,"format":85,"atsCompatibility":80,"strengths":["Clear structure"],"improvements":["Quantify impact"],"summary":"A solid generalist resume."}`
	detailedResult = `{"overall":68,"content":70,"keywords":55,"format":82,"atsCompatibility":78,"strengths":["Go experience"],"improvements":["Mention distributed systems"],"keywordMatch":[{"keyword":"Go","found":true,"context":"Built services in Go"},{"keyword":"distributed systems","found":false}],"summary":"Good fit with gaps."}`
)

// scriptedProvider streams a fixed body in small chunks and records the last request.
type scriptedProvider struct {
	body    string
	err     error
	lastReq llm.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	out := make(chan llm.Chunk)
	body := p.body
	go func() {
		defer close(out)
		for len(body) > 0 {
			n := 24
			if n > len(body) {
				n = len(body)
			}
			if !llm.Send(ctx, out, llm.Chunk{Text: body[:n]}) {
				return
			}
			body = body[n:]
		}
	}()
	return out, nil
}

func newTestService(p llm.Provider) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Service{
		Repo:   repo,
		Scorer: scoring.NewScorer(p),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}, repo
}

func setupRouter(t *testing.T, p llm.Provider) (*gin.Engine, *Service, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	svc, repo := newTestService(p)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Auth())
	NewHandler(svc, nil).RegisterRoutes(router.Group("/api/v1"))
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

func sampleResume() string {
	var b strings.Builder
	b.WriteString("Jane Doe\nBackend Engineer\n\nExperience\n")
	for b.Len() < 500 {
		b.WriteString("- Built and operated HTTP services in Go serving millions of requests per day.\n")
	}
	return b.String()[:500]
}
