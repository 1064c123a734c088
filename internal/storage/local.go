package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "notas/internal/errors"
)

// PublicPrefix is the URL path the local root is served under.
const PublicPrefix = "/storage"

// LocalBackend writes blobs below a root directory on disk.
type LocalBackend struct {
	root    string
	baseURL string
}

// NewLocalBackend returns a backend rooted at root whose files are reachable
// at baseURL + PublicPrefix.
func NewLocalBackend(root, baseURL string) (*LocalBackend, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &LocalBackend{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the absolute directory blobs are written to.
func (b *LocalBackend) Root() string {
	return b.root
}

// Put writes data to root/key through a temp file and rename, so readers
// never observe a partial image.
func (b *LocalBackend) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(b.root, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes storage root", apperrors.ErrStorageWrite, key)
	}
	dir := filepath.Dir(dst)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", classify(err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return "", classify(err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", classify(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", classify(err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", classify(err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", classify(err)
	}

	return b.baseURL + PublicPrefix + "/" + strings.TrimLeft(filepath.ToSlash(key), "/"), nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", apperrors.ErrStoragePermission, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStorageWrite, err)
}
