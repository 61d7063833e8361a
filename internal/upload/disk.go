package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Disk writes files as <unix millis><ext> under a directory that is served
// at URLPrefix.
type Disk struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewDisk(dir, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	return &Disk{dir: dir, urlPrefix: urlPrefix, now: time.Now}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Save(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := extension(f.Name)
	name := strconv.FormatInt(d.now().UnixMilli(), 10) + ext

	out, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		// same millisecond as an earlier upload
		name = strconv.FormatInt(d.now().UnixMilli(), 10) + "-" + uuid.NewString()[:8] + ext
		out, err = os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}

	if _, err := io.Copy(out, f.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("upload: close file: %w", err)
	}

	return path.Join(d.urlPrefix, name), nil
}

func (d *Disk) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, ok := strings.CutPrefix(ref, d.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("upload: foreign reference %q", ref)
	}

	if err := os.Remove(filepath.Join(d.dir, name)); err != nil {
		return fmt.Errorf("upload: remove file: %w", err)
	}
	return nil
}
