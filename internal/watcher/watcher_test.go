package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventSink struct {
	mu     sync.Mutex
	events []string
}

func (s *eventSink) record(kind, path string) {
	s.mu.Lock()
	s.events = append(s.events, kind+":"+path)
	s.mu.Unlock()
}

func (s *eventSink) has(want string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e == want {
			return true
		}
	}
	return false
}

func TestWatchCreate(t *testing.T) {
	vaultDir := t.TempDir()
	sink := &eventSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, vaultDir, testLogger(), sink.record) }()
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "gym.md"), []byte("---\nname: Gym\n---\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.has("created:gym.md")
	}, "expected created:gym.md callback")
}

func TestWatchCoalescesWrites(t *testing.T) {
	vaultDir := t.TempDir()
	path := filepath.Join(vaultDir, "note.md")
	_ = os.WriteFile(path, []byte("v0"), 0o644)

	sink := &eventSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, vaultDir, testLogger(), sink.record) }()
	time.Sleep(100 * time.Millisecond)

	// Burst of writes should collapse into at least one (but coalesced)
	// updated event after the quiet period.
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte("v1"), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.has("updated:note.md")
	}, "expected updated:note.md callback")
}

func TestWatchNewDirAndDelete(t *testing.T) {
	vaultDir := t.TempDir()
	sink := &eventSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, vaultDir, testLogger(), sink.record) }()
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "20-habits")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("---\nname: Deep\n---\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.has("created:20-habits/deep.md")
	}, "file in new subdir not observed")

	_ = os.Remove(filepath.Join(subDir, "deep.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.has("deleted:20-habits/deep.md")
	}, "expected deleted:20-habits/deep.md callback")
}

func TestWatchIgnoresNonDocuments(t *testing.T) {
	vaultDir := t.TempDir()
	sink := &eventSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, vaultDir, testLogger(), sink.record) }()
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "pending-credits.json"), []byte("[]"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, ".hidden.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "real.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return sink.has("created:real.md")
	}, "expected created:real.md callback")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, e := range sink.events {
		if e == "created:pending-credits.json" || e == "created:.hidden.md" {
			t.Errorf("non-document surfaced: %s", e)
		}
	}
}
