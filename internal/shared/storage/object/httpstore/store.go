package httpstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resume-scorer/internal/shared/storage/object"
)

// Store fetches blobs over plain HTTP(S), for public or pre-signed locations.
type Store struct {
	Client *http.Client
}

// New returns a Store with a bounded client timeout. Redirects are not
// followed, so a location can only reach the host it names.
func New() *Store {
	return &Store{Client: &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// Open issues a GET for location. Any non-2xx status is an error.
func (s *Store) Open(ctx context.Context, location string) (*object.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL.Host, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: upstream status %d", req.URL.Host, resp.StatusCode)
	}
	return &object.Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

var _ object.Store = (*Store)(nil)
