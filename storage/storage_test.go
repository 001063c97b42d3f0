package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStore_Put(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "/uploads")

	url, err := store.Put(context.Background(), "sales/abc/documentacao/rg.pdf", "application/pdf", strings.NewReader("conteudo"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/uploads/sales/abc/documentacao/rg.pdf" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "sales", "abc", "documentacao", "rg.pdf"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "conteudo" {
		t.Fatalf("stored content = %q, want %q", data, "conteudo")
	}
}

func TestDiskStore_Put_Overwrites(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/uploads")
	ctx := context.Background()

	if _, err := store.Put(ctx, "a/b.txt", "text/plain", strings.NewReader("first")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	url, err := store.Put(ctx, "a/b.txt", "text/plain", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if url != "/uploads/a/b.txt" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestDiskStore_Put_RejectsEmptyKey(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/uploads")

	for _, key := range []string{"", "/", "."} {
		if _, err := store.Put(context.Background(), key, "text/plain", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestDiskStore_Put_NeutralizesTraversal(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root, "/uploads")

	url, err := store.Put(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/uploads/escape.txt" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("expected file inside root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("file escaped the store root")
	}
}
