package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDisk stores files under Root and serves them below BaseURL.
type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocalDisk makes root absolute relative to the working directory.
func NewLocalDisk(root, baseURL string) *LocalDisk {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *LocalDisk) Root() string { return d.root }

// abs resolves p inside root; ".." segments cannot climb out.
func (d *LocalDisk) abs(p string) string {
	clean := path.Clean("/" + p)
	return filepath.Join(d.root, filepath.FromSlash(clean))
}

func (d *LocalDisk) Put(_ context.Context, p string, content []byte, _ string) error {
	full := d.abs(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", p, err)
	}
	return nil
}

func (d *LocalDisk) Get(_ context.Context, p string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", p, err)
	}
	return data, nil
}

func (d *LocalDisk) Exists(_ context.Context, p string) (bool, error) {
	_, err := os.Stat(d.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (d *LocalDisk) Delete(_ context.Context, p string) error {
	err := os.Remove(d.abs(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", p, err)
	}
	return nil
}

func (d *LocalDisk) URL(p string) string {
	return d.baseURL + "/" + strings.TrimLeft(p, "/")
}

// Handler serves the disk's files read-only; mount it under BaseURL's path.
func (d *LocalDisk) Handler() http.Handler {
	return http.FileServer(http.Dir(d.root))
}
