// Package upload stores profile pictures and hands back an opaque reference
// that is saved on the employee record.
package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploader interface {
	Save(ctx context.Context, f File) (string, error)
	// Remove deletes a file by the reference Save returned.
	Remove(ctx context.Context, ref string) error
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// extension returns the lower-cased extension of name when it is a known
// image type, or "".
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if !imageExts[ext] {
		return ""
	}
	return ext
}
