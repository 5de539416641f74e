package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/mazkir/mazkir/internal/apperr"
)

const habitDoc = `---
name: Morning Gym
status: active
streak: 12
best_streak: 21
last_completed: 2026-08-27
tokens_per_completion: 10
---

Some notes about the gym.

- bring a towel
`

func TestDecodeFrontmatter(t *testing.T) {
	meta, body, err := Decode([]byte(habitDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := meta.String("name"); got != "Morning Gym" {
		t.Errorf("name = %q", got)
	}
	if got := meta.Int("streak"); got != 12 {
		t.Errorf("streak = %d", got)
	}
	if got := meta.String("last_completed"); got != "2026-08-27" {
		t.Errorf("last_completed = %q, dates must stay strings", got)
	}
	if !strings.HasPrefix(body, "\nSome notes") {
		t.Errorf("body = %q", body)
	}
}

func TestRoundTripPreservesBytes(t *testing.T) {
	meta, body, err := Decode([]byte(habitDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := Encode(meta, body)
	if string(out) != habitDoc {
		t.Errorf("round trip changed bytes:\n--- in ---\n%s\n--- out ---\n%s", habitDoc, out)
	}
}

func TestRoundTripPreservesFieldOrder(t *testing.T) {
	raw := "---\nzebra: 1\napple: 2\nmango: 3\n---\nbody\n"
	meta, body, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	keys := meta.Keys()
	want := []string{"zebra", "apple", "mango"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	if string(Encode(meta, body)) != raw {
		t.Errorf("order not preserved: %s", Encode(meta, body))
	}
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	raw := "---\nname: x\nmy_custom_note: keep me\nstreak: 1\n---\n"
	meta, body, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	meta.Set("streak", 2)
	out := string(Encode(meta, body))
	if !strings.Contains(out, "my_custom_note: keep me") {
		t.Errorf("unknown field dropped: %s", out)
	}
	if strings.Index(out, "my_custom_note") > strings.Index(out, "streak") {
		t.Errorf("unknown field moved: %s", out)
	}
}

func TestDecodeNoFrontmatter(t *testing.T) {
	raw := "just a body\nwith two lines\n"
	meta, body, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Len() != 0 {
		t.Errorf("meta.Len() = %d, want 0", meta.Len())
	}
	if body != raw {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeDelimiterNotAtStart(t *testing.T) {
	raw := "\n---\nname: x\n---\n"
	meta, body, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Len() != 0 || body != raw {
		t.Error("leading blank line must disable frontmatter parsing")
	}
}

func TestDecodeUnterminatedFrontmatter(t *testing.T) {
	_, _, err := Decode([]byte("---\nname: x\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestDecodeInvalidYAML(t *testing.T) {
	_, _, err := Decode([]byte("---\nname: [unclosed\n---\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestDecodeDuplicateKeys(t *testing.T) {
	_, _, err := Decode([]byte("---\nname: a\nname: b\n---\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestDecodeStringList(t *testing.T) {
	raw := "---\ncompleted_habits:\n  - Gym\n  - Reading\n---\n"
	meta, _, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	list := meta.StringList("completed_habits")
	if len(list) != 2 || list[0] != "Gym" || list[1] != "Reading" {
		t.Errorf("list = %v", list)
	}
}

func TestEncodeEmptyMetadata(t *testing.T) {
	out := Encode(NewMetadata(), "plain body\n")
	if string(out) != "plain body\n" {
		t.Errorf("out = %q", out)
	}
}

func TestMetadataSetKeepsPosition(t *testing.T) {
	m := NewMetadata()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("b", 20)
	keys := m.Keys()
	if keys[1] != "b" {
		t.Errorf("keys = %v, replacing a value must not move the key", keys)
	}
	if v := m.Int("b"); v != 20 {
		t.Errorf("b = %d", v)
	}
}

func TestMetadataCloneIsDeep(t *testing.T) {
	m := NewMetadata()
	m.Set("list", []string{"a"})
	c := m.Clone()
	c.StringList("list")[0] = "mutated"
	if m.StringList("list")[0] != "a" {
		t.Error("Clone shares backing array with original")
	}
}

func TestBodyBytePreservation(t *testing.T) {
	body := "line1\n\n\ttabbed\n  trailing spaces  \nno final newline"
	raw := "---\nk: v\n---\n" + body
	meta, gotBody, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotBody != body {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
	if string(Encode(meta, gotBody)) != raw {
		t.Error("encode changed body bytes")
	}
}
