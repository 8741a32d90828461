package object

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Object is an opened blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store reads blobs by their location URL.
type Store interface {
	Open(ctx context.Context, location string) (*Object, error)
}

// Mux dispatches Open to the store registered for the location's URL scheme.
type Mux struct {
	stores map[string]Store
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{stores: make(map[string]Store)}
}

// Handle registers s for the given schemes.
func (m *Mux) Handle(s Store, schemes ...string) {
	for _, scheme := range schemes {
		m.stores[strings.ToLower(scheme)] = s
	}
}

// Open implements Store.
func (m *Mux) Open(ctx context.Context, location string) (*Object, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	s, ok := m.stores[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("no store for scheme %q", u.Scheme)
	}
	return s.Open(ctx, location)
}

// ReadAll opens location and reads it fully.
func ReadAll(ctx context.Context, s Store, location string) ([]byte, string, error) {
	obj, err := s.Open(ctx, location)
	if err != nil {
		return nil, "", err
	}
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read object: %w", err)
	}
	return data, obj.ContentType, nil
}
