package filestore

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	key, err := store.Put(ctx, "materials/notes.txt", strings.NewReader("flex vs grid"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if key != "materials/notes.txt" {
		t.Fatalf("unexpected key: %s", key)
	}

	rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "flex vs grid" {
		t.Fatalf("unexpected content: %q", body)
	}
}

func TestFSStoreRejectsEmptyKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Put(context.Background(), "", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestFSStoreDeleteIsIdempotent(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Put(ctx, "a.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Get(ctx, "a.pdf"); err == nil {
		t.Fatal("expected error reading deleted key")
	}
}
