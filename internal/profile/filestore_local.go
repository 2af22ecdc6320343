package profile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalFileStore writes uploads under a base directory and serves them by
// URL path. Object storage backends implement the same FileStore port.
type LocalFileStore struct {
	baseDir string
	baseURL string
}

func NewLocalFileStore(baseDir, baseURL string) (*LocalFileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save stores the upload under a random name, keeping only the original
// extension. The random name prevents path traversal via the client name.
func (s *LocalFileStore) Save(_ context.Context, name, _ string, _ int64, r io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(name))
	stored := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.baseDir, stored))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + "/" + stored, nil
}
