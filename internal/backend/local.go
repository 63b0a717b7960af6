package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ModelVault/internal/domain/models"
)

// Local reads artifacts from a base directory on the local filesystem.
type Local struct {
	base string
}

// NewLocal creates a local filesystem backend rooted at base.
func NewLocal(base string) *Local {
	return &Local{base: base}
}

// Name identifies the backend variant.
func (l *Local) Name() string { return "local" }

// Fetch reads the file at base/path. Paths use forward slashes regardless of OS.
func (l *Local) Fetch(_ context.Context, path string) ([]byte, error) {
	full := filepath.Join(l.base, filepath.FromSlash(path))

	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.ArtifactNotFoundError{Backend: l.Name(), Path: path, Err: err}
		}
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return b, nil
}
