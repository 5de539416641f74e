package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mazkir/mazkir/internal/apperr"
)

// DocumentExt is the file extension that marks a vault document. Listing
// skips everything else, so sidecar files (the recovery journal, editor
// swap files) never surface as documents.
const DocumentExt = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root    string        // absolute path to vault directory
	timeout time.Duration // per-operation IO deadline, 0 disables
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist. A non-zero timeout bounds every
// operation; an exceeded deadline maps to apperr.ErrTimeout.
func NewFS(root string, timeout time.Duration) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, timeout: timeout}, nil
}

// Root returns the absolute vault root path.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute path %s: %w", rel, apperr.ErrPathEscape)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %s: %w", rel, apperr.ErrPathEscape)
	}
	return abs, nil
}

// run executes op under the configured deadline. The operation itself is
// not interruptible mid-syscall, but callers never wait past the
// deadline and the atomic-write discipline keeps partial results
// invisible.
func (f *FS) run(ctx context.Context, op func() error) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperr.ErrTimeout
		}
		return ctx.Err()
	}
}

// List walks dir (relative to root) and returns the relative path of
// every document file, sorted for deterministic iteration.
func (f *FS) List(ctx context.Context, dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = f.run(ctx, func() error {
		return filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), DocumentExt) {
				return nil
			}
			rel, relErr := filepath.Rel(f.root, p)
			if relErr != nil {
				return relErr
			}
			out = append(out, filepath.ToSlash(rel))
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: list %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(ctx context.Context, path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = f.run(ctx, func() error {
		var readErr error
		data, readErr = os.ReadFile(abs)
		return readErr
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces content: tmp file → fsync → rename. The
// store never edits a file in place.
func (f *FS) Write(ctx context.Context, path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	return f.run(ctx, func() error { return writeAtomic(abs, content) })
}

// WriteNew creates path with content, failing if the file already
// exists. The link-into-place step is atomic, so two racing callers on
// the same path get exactly one success and one ErrAlreadyExists.
func (f *FS) WriteNew(ctx context.Context, path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	err = f.run(ctx, func() error { return writeExclusive(abs, content) })
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: create %s: %w", path, apperr.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mazkir-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// writeExclusive stages content in a temp file and links it into place.
// link(2) fails with EEXIST when the target exists, which gives the
// create-if-absent guarantee that a stat-then-rename sequence cannot.
func writeExclusive(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mazkir-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Link(tmpName, abs); err != nil {
		return fmt.Errorf("storage: link: %w", err)
	}
	return nil
}
