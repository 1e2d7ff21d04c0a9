package zip

import (
	stdzip "archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchive(t *testing.T) {
	entries := []Entry{
		{Name: "front.jpg", MIME: "image/jpeg", Data: []byte("jpeg bytes")},
		{Name: "front-reflection", MIME: "image/png", Data: []byte("png bytes")},
	}

	data, err := Archive(entries)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d files, want 2", len(zr.File))
	}

	want := map[string]string{
		"front.jpg":            "jpeg bytes",
		"front-reflection.png": "png bytes",
	}
	for _, f := range zr.File {
		expected, ok := want[f.Name]
		if !ok {
			t.Fatalf("unexpected archive entry %q", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if string(got) != expected {
			t.Fatalf("entry %s = %q, want %q", f.Name, got, expected)
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if _, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive unreadable: %v", err)
	}
}
