// Package zip packages a pipeline run's image outputs into a single
// downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
)

// Entry is one image destined for the archive.
type Entry struct {
	Name string
	MIME string
	Data []byte
}

// Archive writes every entry into a zip archive, appending a file extension
// derived from the media type when the name lacks one.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		name := entry.Name
		if path.Ext(name) == "" {
			name += extension(entry.MIME)
		}
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
