// Package storage defines the vault file-system abstraction.
package storage

import "context"

// Provider is the interface for byte-level vault file operations. Every
// call may block on filesystem IO; implementations honor the context and
// the configured IO timeout.
type Provider interface {
	// List returns the relative paths of every document file under dir
	// (relative to vault root). A missing directory is an error; callers
	// choose their own missing-directory policy.
	List(ctx context.Context, dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(ctx context.Context, path string) ([]byte, error)
	// Write atomically replaces the file at path with content. A reader
	// observes either the old complete content or the new, never a
	// partial byte sequence.
	Write(ctx context.Context, path string, content []byte) error
	// WriteNew atomically creates the file at path, failing with
	// apperr.ErrAlreadyExists when the path is occupied. Concurrent
	// callers racing on the same path see exactly one success.
	WriteNew(ctx context.Context, path string, content []byte) error
}
