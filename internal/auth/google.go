// Package auth implements the Google sign-in flow that issues the API's
// bearer tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "resume-scorer/internal/shared/auth"
	"resume-scorer/internal/shared/server/respond"
	"resume-scorer/internal/shared/telemetry"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL           = 5 * time.Minute
	subjectPrefix      = "google:"
)

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirectURL receives the issued token as the "token" query parameter.
	UIRedirectURL string
}

// GoogleService handles the OAuth start and callback endpoints.
type GoogleService struct {
	oauth       *oauth2.Config
	uiRedirect  string
	userInfoURL string
	states      *stateStore
	now         func() time.Time
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(cfg GoogleConfig) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  cfg.UIRedirectURL,
		userInfoURL: defaultUserInfoURL,
		states:      newStateStore(),
		now:         time.Now,
	}
}

// Configured reports whether the OAuth client settings are present.
func (s *GoogleService) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != ""
}

// RegisterRoutes attaches Google auth routes. Both are public.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.Configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	s.states.put(state, s.now().Add(stateTTL))
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "missing state or code", nil)
		return
	}
	if !s.states.consume(state, s.now()) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "failed to exchange code", nil)
		return
	}

	profile, err := s.fetchProfile(ctx, s.oauth.Client(ctx, token))
	if err != nil || profile.Sub == "" {
		telemetry.Warn("auth.profile_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	signed, err := s.issue(profile)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	target, err := appendToken(s.uiRedirect, signed)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.signed_in", map[string]any{"user_id": subjectPrefix + profile.Sub})
	c.Redirect(http.StatusFound, target)
}

// googleProfile is the userinfo payload. Older endpoints send "id" rather
// than "sub".
type googleProfile struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchProfile(ctx context.Context, client *http.Client) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Sub == "" {
		p.Sub = p.ID
	}
	return p, nil
}

func (s *GoogleService) issue(p googleProfile) (string, error) {
	var claims sharedauth.Claims
	claims.Subject = subjectPrefix + p.Sub
	claims.Email = strings.TrimSpace(p.Email)
	claims.Name = strings.TrimSpace(p.Name)
	claims.Picture = strings.TrimSpace(p.Picture)
	return sharedauth.SignJWT(claims)
}

// stateStore remembers issued OAuth states until they are used or expire.
type stateStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.items {
		if exp.Before(expires.Add(-stateTTL)) {
			delete(s.items, k)
		}
	}
	s.items[state] = expires
}

// consume reports whether state was issued and has not expired. A state is
// accepted at most once.
func (s *stateStore) consume(state string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	if !ok {
		return false
	}
	delete(s.items, state)
	return now.Before(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
