package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDisk writes files below a root directory that the router serves
// under publicPath.
type LocalDisk struct {
	root       string
	publicPath string
}

// NewLocalDisk creates root if needed.
func NewLocalDisk(root, publicPath string) (*LocalDisk, error) {
	if root == "" {
		return nil, errors.New("storage/local: root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: create root: %w", err)
	}
	return &LocalDisk{root: root, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Root is the directory files are written to.
func (d *LocalDisk) Root() string { return d.root }

func (d *LocalDisk) Put(_ context.Context, p string, data []byte, _ string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", p, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage/local: rename %s: %w", p, err)
	}
	return nil
}

// Delete ignores files that are already gone.
func (d *LocalDisk) Delete(_ context.Context, p string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", p, err)
	}
	return nil
}

func (d *LocalDisk) URL(p string) string {
	return path.Join(d.publicPath, path.Clean("/"+p))
}

// resolve rejects paths that would escape root.
func (d *LocalDisk) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", fmt.Errorf("storage/local: invalid path %q", p)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}
