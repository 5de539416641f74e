// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mazkir/mazkir/internal/clock"
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/vault"
)

// TestHistory creates a temporary SQLite history database that is
// automatically cleaned up.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mazkir-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	fs, err := storage.NewFS(vaultDir, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, fs
}

// TestStore creates a temporary vault with a document store pinned to
// the given date (midnight UTC).
func TestStore(t *testing.T, date string) (*vault.Store, *storage.FS) {
	t.Helper()
	_, fs := TestVault(t)
	ts, err := time.ParseInLocation(clock.DateFormat, date, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	store := vault.New(fs, clock.Fixed{T: ts}, time.UTC)
	return store, fs
}

// WriteDoc writes raw document text into the vault, failing the test on error.
func WriteDoc(t *testing.T, fs *storage.FS, path, content string) {
	t.Helper()
	if err := fs.Write(context.Background(), path, []byte(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
