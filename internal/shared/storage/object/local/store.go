package local

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"resume-scorer/internal/shared/storage/object"
)

// Store serves file:// locations rooted at a base directory. Used in dev.
type Store struct {
	baseDir string
}

// New creates a local store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Open resolves a file:// location (or a bare relative key) under the base directory.
func (s *Store) Open(ctx context.Context, location string) (*object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := location
	if u, err := url.Parse(location); err == nil && u.Scheme == "file" {
		key = u.Host + u.Path
	}

	clean := filepath.Clean(strings.TrimLeft(key, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid storage key")
	}

	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &object.Object{
		Body:        f,
		ContentType: mime.TypeByExtension(filepath.Ext(clean)),
		Size:        info.Size(),
	}, nil
}

var _ object.Store = (*Store)(nil)
