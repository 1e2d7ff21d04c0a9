package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"studioshot/internal/domain"
)

func TestWriteAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "runs/abc/photo.jpg", []byte("payload"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if key != "runs/abc/photo.jpg" {
		t.Fatalf("key = %q, want runs/abc/photo.jpg", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Fatalf("Read = %q, want payload", data)
	}
}

func TestWriteRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	tests := []string{"", "../escape", "a/../../escape", "..\\escape"}
	for _, key := range tests {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("key %q was accepted", key)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape")); err == nil {
		t.Fatal("traversal escaped the storage root")
	}
}

func TestWriteImageDerivesExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	img := domain.RawImage{Name: "photo.png", MIME: domain.MIMEJPEG, Data: []byte("jpeg bytes")}
	key, err := store.WriteImage(context.Background(), "runs/r1", img)
	if err != nil {
		t.Fatalf("WriteImage returned error: %v", err)
	}
	if key != "runs/r1/photo.jpg" {
		t.Fatalf("key = %q, want runs/r1/photo.jpg", key)
	}
}

func TestWriteImageRequiresName(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if _, err := store.WriteImage(context.Background(), "runs/r1", domain.RawImage{MIME: domain.MIMEPNG}); err == nil {
		t.Fatal("expected error for unnamed image")
	}
}

func TestWriteHonorsCancellation(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "k", []byte("x")); err == nil {
		t.Fatal("expected cancellation error")
	}
}
