// Package apperr defines the sentinel errors shared across the vault core.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a document, directory, or named entity
	// does not exist under the vault root.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name resolves to more than one
	// candidate. Callers surface the candidates instead of guessing.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrMalformed is returned when a document carries a frontmatter block
	// that is not well-formed. It signals a corrupted vault, not bad input.
	ErrMalformed = errors.New("malformed document")

	// ErrPathEscape is returned when a resolved path falls outside the
	// vault root.
	ErrPathEscape = errors.New("path escapes vault root")

	// ErrInvalidAmount is returned for non-positive token credits.
	ErrInvalidAmount = errors.New("invalid token amount")

	// ErrTimeout is returned when a vault IO operation exceeds the
	// configured deadline.
	ErrTimeout = errors.New("timeout")

	// ErrAlreadyExists is returned by create operations on an occupied path.
	ErrAlreadyExists = errors.New("already exists")
)
