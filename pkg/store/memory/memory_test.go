package memory

import (
	"context"
	"testing"

	"cohera/pkg/store"
)

func TestStore_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "absent"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	vec := []float32{0.1, 0.2, 0.3}
	if err := s.Set(ctx, "k", vec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 3 || got[0] != 0.1 || got[2] != 0.3 {
		t.Fatalf("unexpected vector %v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
}

func TestStore_CopiesOnSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	vec := []float32{1, 2}
	if err := s.Set(ctx, "k", vec); err != nil {
		t.Fatalf("Set: %v", err)
	}
	vec[0] = 99

	got, _, _ := s.Get(ctx, "k")
	if got[0] != 1 {
		t.Fatalf("stored vector aliased caller's slice: %v", got)
	}
}

func TestKey_ModelScoped(t *testing.T) {
	a := store.Key("model-a", "same text")
	b := store.Key("model-b", "same text")
	if a == b {
		t.Fatal("different models must produce different keys")
	}
	if a != store.Key("model-a", "same text") {
		t.Fatal("key derivation must be stable")
	}

	// The separator keeps model/text boundaries unambiguous.
	if store.Key("ab", "c") == store.Key("a", "bc") {
		t.Fatal("model and text must not be conflatable")
	}
}
