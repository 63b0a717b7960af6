package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ModelVault/internal/domain/models"
)

func TestLocalFetch(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "etfs", "SMH", "production")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []byte(`{"version":"1.0"}`)
	if err := os.WriteFile(filepath.Join(sub, "metadata.json"), want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLocal(dir)
	got, err := l.Fetch(context.Background(), "etfs/SMH/production/metadata.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestLocalFetchMissing(t *testing.T) {
	l := NewLocal(t.TempDir())

	_, err := l.Fetch(context.Background(), "etfs/SMH/production/metadata.json")
	var notFound *models.ArtifactNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ArtifactNotFoundError, got %v", err)
	}
	if notFound.Backend != "local" {
		t.Fatalf("unexpected backend %q", notFound.Backend)
	}
}

func TestLocalName(t *testing.T) {
	if got := NewLocal(".").Name(); got != "local" {
		t.Fatalf("unexpected name %q", got)
	}
}
