package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactStore persists binary artifacts (audio files, slide images) under a
// per-content directory. Content records reference artifacts by the returned
// relative path; ownership is exclusive, so deleting a content record removes
// its whole directory.
type ArtifactStore struct {
	root string
}

func NewArtifactStore(root string) (*ArtifactStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &ArtifactStore{root: root}, nil
}

func (s *ArtifactStore) Root() string {
	return s.root
}

// Write stores data under <root>/<contentId>/<name> and returns the path
// relative to the root.
func (s *ArtifactStore) Write(contentId uuid.UUID, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, contentId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	return rel, nil
}

func (s *ArtifactStore) Read(relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, relPath))
}

// DeleteAll removes every artifact owned by a content record.
func (s *ArtifactStore) DeleteAll(contentId uuid.UUID) error {
	dir := filepath.Join(s.root, contentId.String())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove artifact dir: %w", err)
	}
	return nil
}
