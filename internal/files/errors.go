package files

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoLocation   = errors.New("file has no storage location")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream wraps blob store failures when proxying content.
	ErrUpstream = errors.New("blob store fetch failed")
)
