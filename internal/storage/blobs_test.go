package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestPutOpenRemove(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore failed: %v", err)
	}

	key, size, err := store.Put(strings.NewReader("conteudo"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if size != int64(len("conteudo")) {
		t.Errorf("Expected size %d, got %d", len("conteudo"), size)
	}

	data, err := store.ReadAll(key)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "conteudo" {
		t.Errorf("Expected stored content, got %q", string(data))
	}

	if err := store.Remove(key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Open(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}
	if err := store.Remove(key); err != nil {
		t.Errorf("Removing a missing blob should not fail: %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore failed: %v", err)
	}

	for _, key := range []string{"../etc/passwd", "", "ab/../../x", "zz/not-a-key"} {
		if _, err := store.Open(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for key %q, got %v", key, err)
		}
	}
}

func TestWritable(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore failed: %v", err)
	}
	if err := store.Writable(); err != nil {
		t.Errorf("Expected writable store: %v", err)
	}
}
