package object

import (
	"context"
	"io"
	"strings"
	"testing"
)

type stubStore struct {
	body string
	seen string
}

func (s *stubStore) Open(ctx context.Context, location string) (*Object, error) {
	s.seen = location
	return &Object{Body: io.NopCloser(strings.NewReader(s.body)), ContentType: "text/plain"}, nil
}

func TestMuxDispatchesOnScheme(t *testing.T) {
	web := &stubStore{body: "web"}
	bucket := &stubStore{body: "bucket"}
	mux := NewMux()
	mux.Handle(web, "http", "https")
	mux.Handle(bucket, "s3")

	data, contentType, err := ReadAll(context.Background(), mux, "s3://b/k.txt")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "bucket" || contentType != "text/plain" {
		t.Fatalf("unexpected read: %q %q", data, contentType)
	}
	if bucket.seen != "s3://b/k.txt" || web.seen != "" {
		t.Fatalf("wrong store used: web=%q bucket=%q", web.seen, bucket.seen)
	}

	if _, err := mux.Open(context.Background(), "ftp://host/file"); err == nil {
		t.Fatalf("expected error for unregistered scheme")
	}
}
