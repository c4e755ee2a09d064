package memory

import (
	"context"
	"errors"
	"testing"

	"streamtally/internal/storage"
)

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := []byte("hello")
	if err := s.Put(ctx, "k", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	in[0] = 'j'

	out, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("stored value aliased caller bytes: %q", out)
	}
	out[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "hello" {
		t.Fatalf("returned value aliased stored bytes: %q", again)
	}
}
