package vault_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/testutil"
	"github.com/mazkir/mazkir/internal/vault"
)

func TestReadDecodesDocument(t *testing.T) {
	store, fs := testutil.TestStore(t, "2026-08-29")
	testutil.WriteDoc(t, fs, "20-habits/gym.md", "---\nname: Gym\nstreak: 3\n---\nnotes\n")

	doc, err := store.Read(context.Background(), "20-habits/gym.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Meta.String("name") != "Gym" {
		t.Errorf("name = %q", doc.Meta.String("name"))
	}
	if doc.Body != "notes\n" {
		t.Errorf("body = %q", doc.Body)
	}
	if doc.Checksum == "" {
		t.Error("checksum not populated")
	}
}

func TestReadMalformed(t *testing.T) {
	store, fs := testutil.TestStore(t, "2026-08-29")
	testutil.WriteDoc(t, fs, "bad.md", "---\nname: [broken\n---\n")

	_, err := store.Read(context.Background(), "bad.md")
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestCreateRejectsExisting(t *testing.T) {
	store, _ := testutil.TestStore(t, "2026-08-29")
	ctx := context.Background()
	meta := codec.NewMetadata()
	meta.Set("name", "Gym")

	if _, err := store.Create(ctx, "20-habits/gym.md", meta, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, "20-habits/gym.md", meta, "")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateStampsUpdatedField(t *testing.T) {
	store, fs := testutil.TestStore(t, "2026-08-29")
	ctx := context.Background()
	testutil.WriteDoc(t, fs, "20-habits/gym.md", "---\nname: Gym\nstreak: 3\nupdated: 2026-08-01\n---\n")

	doc, err := store.Update(ctx, "20-habits/gym.md", func(d *models.Document) error {
		d.Meta.Set("streak", 4)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if doc.Meta.Int("streak") != 4 {
		t.Errorf("streak = %d", doc.Meta.Int("streak"))
	}
	if doc.Meta.String("updated") != "2026-08-29" {
		t.Errorf("updated = %q, want today", doc.Meta.String("updated"))
	}

	reread, err := store.Read(ctx, "20-habits/gym.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if reread.Meta.Int("streak") != 4 {
		t.Error("update not persisted")
	}
}

func TestUpdateMutateErrorLeavesFileUntouched(t *testing.T) {
	store, fs := testutil.TestStore(t, "2026-08-29")
	ctx := context.Background()
	raw := "---\nname: Gym\n---\n"
	testutil.WriteDoc(t, fs, "20-habits/gym.md", raw)

	before, _ := store.Read(ctx, "20-habits/gym.md")
	_, err := store.Update(ctx, "20-habits/gym.md", func(d *models.Document) error {
		d.Meta.Set("name", "mutated")
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	after, _ := store.Read(ctx, "20-habits/gym.md")
	if before.Checksum != after.Checksum {
		t.Error("failed update must not write")
	}
}

func TestListWithFilter(t *testing.T) {
	store, fs := testutil.TestStore(t, "2026-08-29")
	testutil.WriteDoc(t, fs, "20-habits/a.md", "---\nname: A\nstatus: active\n---\n")
	testutil.WriteDoc(t, fs, "20-habits/b.md", "---\nname: B\nstatus: archived\n---\n")

	docs, err := store.List(context.Background(), vault.HabitsDir, vault.ListOptions{
		Filter: func(d *models.Document) bool {
			return d.Meta.String("status") == models.StatusActive
		},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Meta.String("name") != "A" {
		t.Errorf("docs = %v", docs)
	}
}

func TestListMissingDir(t *testing.T) {
	store, _ := testutil.TestStore(t, "2026-08-29")
	ctx := context.Background()

	if _, err := store.List(ctx, "nope", vault.ListOptions{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	docs, err := store.List(ctx, "nope", vault.ListOptions{MissingDirOK: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %v, want empty", docs)
	}
}

func TestDailyPath(t *testing.T) {
	if got := vault.DailyPath("2026-08-29"); got != "10-daily/2026-08-29.md" {
		t.Errorf("DailyPath = %q", got)
	}
}

func TestToday(t *testing.T) {
	store, _ := testutil.TestStore(t, "2026-08-29")
	if got := store.Today(); got != "2026-08-29" {
		t.Errorf("Today = %q", got)
	}
}
