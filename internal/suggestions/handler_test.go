package suggestions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-scorer/internal/scoring"
)

func newRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	})
	NewHandler(svc, nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestSuggestEndpoint(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	router := newRouter(&Service{Analyses: store, Scorer: scoring.NewScorer(&cannedProvider{})}, "owner")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/"+a.ID+"/suggestions", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		Success     bool   `json:"success"`
		Source      string `json:"source"`
		Suggestions Set    `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, SourceDerived, body.Source)
	assert.NotNil(t, body.Suggestions.Custom)
}

func TestOptimizeEndpoint(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	provider := &cannedProvider{body: `{"overall":81,"content":80,"keywords":79,"format":78,"atsCompatibility":77}`}
	router := newRouter(&Service{Analyses: store, Scorer: scoring.NewScorer(provider)}, "owner")

	body := bytes.NewReader([]byte(`{"accepted":[{"category":"keywords","title":"Add \"Kafka\"","description":"x"}]}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/"+a.ID+"/optimize", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Scores scoring.Scores `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, 81.0, out.Scores.Overall)
}

func TestEndpointErrors(t *testing.T) {
	store, a := seedAnalysis(t, nil)
	svc := &Service{Analyses: store, Scorer: scoring.NewScorer(&cannedProvider{body: "not json"})}

	tests := []struct {
		name   string
		user   string
		path   string
		body   string
		status int
	}{
		{"anonymous", "", "/api/v1/analyses/" + a.ID + "/suggestions", "", http.StatusUnauthorized},
		{"foreign", "intruder", "/api/v1/analyses/" + a.ID + "/suggestions", "", http.StatusNotFound},
		{"bad json", "owner", "/api/v1/analyses/" + a.ID + "/optimize", "{", http.StatusBadRequest},
		{"bad category", "owner", "/api/v1/analyses/" + a.ID + "/optimize", `{"accepted":[{"category":"misc","title":"x"}]}`, http.StatusBadRequest},
		{"malformed model output", "owner", "/api/v1/analyses/" + a.ID + "/suggestions", `{"targetRole":"SRE"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(svc, tt.user)
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
		})
	}
}
