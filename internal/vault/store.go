// Package vault implements the document store: typed read, write,
// create, update, and list operations over the byte-level storage layer
// and the frontmatter codec.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/checksum"
	"github.com/mazkir/mazkir/internal/clock"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/storage"
)

// Vault layout. One document per habit and per task, one document per
// calendar day, exactly one ledger document.
const (
	HabitsDir       = "20-habits"
	GoalsDir        = "30-goals"
	DailyDir        = "10-daily"
	TasksActiveDir  = "40-tasks/active"
	TasksArchiveDir = "40-tasks/archive"
	LedgerPath      = "00-system/motivation-tokens.md"

	// JournalPath holds the coordinator's pending-credit journal. Not a
	// document (no .md extension), so listings never surface it.
	JournalPath = "00-system/pending-credits.json"
)

// Store provides document-level vault access.
type Store struct {
	fs  storage.Provider
	clk clock.Clock
	loc *time.Location
}

// New creates a Store over fs. The clock and location supply the date
// stamped into the `updated` field on every Update.
func New(fs storage.Provider, clk clock.Clock, loc *time.Location) *Store {
	return &Store{fs: fs, clk: clk, loc: loc}
}

// Today returns the current calendar date in the store's configured zone.
func (s *Store) Today() string {
	return clock.Today(s.clk, s.loc)
}

// Now returns the current instant in the store's configured zone.
func (s *Store) Now() time.Time {
	return s.clk.Now().In(s.loc)
}

// DailyPath returns the path of the day note for the given date.
func DailyPath(date string) string {
	return DailyDir + "/" + date + storage.DocumentExt
}

// Read loads and decodes the document at path.
func (s *Store) Read(ctx context.Context, path string) (*models.Document, error) {
	raw, err := s.fs.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	meta, body, err := codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("vault: %s: %w", path, err)
	}
	return &models.Document{
		Path:     path,
		Meta:     meta,
		Body:     body,
		Checksum: checksum.Sum(raw),
	}, nil
}

// Write fully replaces the document at path. The write is atomic from a
// reader's point of view.
func (s *Store) Write(ctx context.Context, path string, meta *codec.Metadata, body string) error {
	return s.fs.Write(ctx, path, codec.Encode(meta, body))
}

// Create writes a new document, failing with apperr.ErrAlreadyExists if
// the path is occupied.
func (s *Store) Create(ctx context.Context, path string, meta *codec.Metadata, body string) (*models.Document, error) {
	// WriteNew holds the exclusivity guarantee. A read-then-write check
	// here would let two racing creators both pass the check.
	if err := s.fs.WriteNew(ctx, path, codec.Encode(meta, body)); err != nil {
		return nil, err
	}
	return s.Read(ctx, path)
}

// Update reads the document at path, applies mutate to a snapshot,
// stamps the `updated` field with today's date, and writes the result.
// mutate must be a pure function of the snapshot it is given. The store
// does not retry; retry policy belongs to the coordinator, because most
// mutations here are not independently idempotent.
func (s *Store) Update(ctx context.Context, path string, mutate func(*models.Document) error) (*models.Document, error) {
	doc, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	next := doc.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Meta.Set(models.FieldUpdated, s.Today())
	if err := s.Write(ctx, path, next.Meta, next.Body); err != nil {
		return nil, err
	}
	return next, nil
}

// ListOptions controls List behavior.
type ListOptions struct {
	// MissingDirOK treats a missing directory as an empty listing.
	// The policy is per call site, never implicit.
	MissingDirOK bool
	// Filter, when set, keeps only documents for which it returns true.
	Filter func(*models.Document) bool
}

// List reads every document under dir. Non-document files are excluded
// by the storage layer.
func (s *Store) List(ctx context.Context, dir string, opts ListOptions) ([]*models.Document, error) {
	paths, err := s.fs.List(ctx, dir)
	if err != nil {
		if opts.MissingDirOK && errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var out []*models.Document
	for _, p := range paths {
		doc, err := s.Read(ctx, p)
		if err != nil {
			return nil, err
		}
		if opts.Filter != nil && !opts.Filter(doc) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}
