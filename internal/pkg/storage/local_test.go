package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx := context.Background()
	key := "posts/2024/05/abc.txt"

	if err := st.Put(ctx, key, strings.NewReader("hello"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" {
		t.Fatalf("body = %q, want hello", body)
	}

	if got := st.GetURL(key); got != "/uploads/posts/2024/05/abc.txt" {
		t.Fatalf("GetURL = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "posts", "2024", "05"))
	if len(entries) != 1 {
		t.Fatalf("expected only the final file, got %d entries", len(entries))
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if _, err := st.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageKeysStayInsideBase(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(filepath.Join(dir, "base"), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	if err := st.Put(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Fatalf("file escaped the base directory")
	}
	if _, err := os.Stat(filepath.Join(dir, "base", "escape.txt")); err != nil {
		t.Fatalf("expected file under base: %v", err)
	}

	if err := st.Put(context.Background(), "", strings.NewReader("x"), "text/plain"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLocalStorageFailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewLocalStorage(dir, "/uploads")

	if err := st.Put(context.Background(), "a/b.bin", failingReader{}, "application/octet-stream"); err == nil {
		t.Fatal("expected write error")
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "a"))
	if len(entries) != 0 {
		t.Fatalf("expected no leftovers, got %d entries", len(entries))
	}
}
