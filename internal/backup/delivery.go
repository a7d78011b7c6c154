package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Deliverer hands a rendered artifact to the user (a save dialog, a
// directory, a download)
type Deliverer interface {
	Deliver(ctx context.Context, data []byte, filename string) error
}

// Selector asks the user for a file to import. It returns nil, nil when the
// user cancels.
type Selector interface {
	Select(ctx context.Context) ([]byte, error)
}

// DirDeliverer writes artifacts into a directory
type DirDeliverer struct {
	Dir string
}

// Deliver writes data to Dir/filename through a temporary file and a
// rename, so readers never see a partial file
func (d *DirDeliverer) Deliver(ctx context.Context, data []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid filename %q", filename)
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, "."+filename+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(d.Dir, filename)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filename, err)
	}
	return nil
}

// FileSelector reads the file at Path. An empty Path means the user
// cancelled.
type FileSelector struct {
	Path string
}

// Select returns the file contents, or nil when no path is set
func (s *FileSelector) Select(ctx context.Context) ([]byte, error) {
	if s.Path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return data, nil
}
