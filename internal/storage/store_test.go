package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fortress-go/internal/fortress"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s fortress.Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, fortress.NotesKey); err != nil || ok {
		t.Fatalf("Get() on empty store = (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	if err := s.Set(ctx, fortress.NotesKey, []byte("first")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, fortress.NotesKey, []byte("second")); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	got, ok, err := s.Get(ctx, fortress.NotesKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || !bytes.Equal(got, []byte("second")) {
		t.Errorf("Get() = (%q, %v), want (%q, true)", got, ok, "second")
	}

	// Callers must not be able to modify stored values through returned slices.
	got[0] = 'X'
	again, _, _ := s.Get(ctx, fortress.NotesKey)
	if !bytes.Equal(again, []byte("second")) {
		t.Errorf("stored value changed through returned slice: %q", again)
	}

	if err := s.Delete(ctx, fortress.NotesKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, fortress.NotesKey); err != nil {
		t.Fatalf("Delete() of absent key error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, fortress.NotesKey); ok {
		t.Error("Get() after Delete() reports present")
	}

	for _, bad := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := s.Set(ctx, bad, []byte("x")); err == nil {
			t.Errorf("Set(%q) expected error", bad)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileSystemStore(t *testing.T) {
	s, err := NewFileSystemStore(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	exerciseStore(t, s)
}

func TestFileSystemStore_FileMode(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := s.Set(context.Background(), fortress.UserRecordKey, []byte("{}")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(root, ".tmp-*"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}

	info, err := os.Stat(filepath.Join(root, fortress.UserRecordKey))
	if err != nil {
		t.Fatalf("stat error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want %o", perm, 0600)
	}
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	dst := NewMemoryStore()

	if err := src.Set(ctx, fortress.UserRecordKey, []byte("record")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := src.Set(ctx, fortress.NotesKey, []byte("ciphertext")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	copied, err := Copy(ctx, src, dst, fortress.UserRecordKey, fortress.NotesKey, fortress.ThemeKey)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if len(copied) != 2 {
		t.Errorf("Copy() copied %v, want 2 keys", copied)
	}

	got, ok, _ := dst.Get(ctx, fortress.NotesKey)
	if !ok || string(got) != "ciphertext" {
		t.Errorf("dst notes = (%q, %v), want (%q, true)", got, ok, "ciphertext")
	}
	if _, ok, _ := dst.Get(ctx, fortress.ThemeKey); ok {
		t.Error("absent key was copied")
	}
}
