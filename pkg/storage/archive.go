package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveStore keeps rendered exports on local disk. Paths handed to it are
// always relative to the archive root; absolute paths are rejected so a
// crafted share token can never escape the directory.
type ArchiveStore struct {
	root string
}

// NewArchiveStore ensures the archive root exists and returns a handle to it.
func NewArchiveStore(root string) (*ArchiveStore, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &ArchiveStore{root: root}, nil
}

// Save writes data under the archive root, creating subdirectories as needed.
func (s *ArchiveStore) Save(relPath string, data []byte) (string, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare archive directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return relPath, nil
}

// Open returns a read-only handle to an archived file.
func (s *ArchiveStore) Open(relPath string) (*os.File, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	return file, nil
}

// CleanupOlderThan removes archived files whose modification time predates
// the retention window and reports the relative paths it removed.
func (s *ArchiveStore) CleanupOlderThan(retain time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retain)
	var removed []string
	walk := func(full string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil || entry.IsDir() {
			return walkErr
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return err
		}
		if rel, err := filepath.Rel(s.root, full); err == nil {
			removed = append(removed, rel)
		}
		return nil
	}
	if err := filepath.WalkDir(s.root, walk); err != nil {
		return nil, fmt.Errorf("cleanup archive: %w", err)
	}
	return removed, nil
}

func (s *ArchiveStore) resolve(relPath string) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("invalid archive path %q", relPath)
	}
	clean := filepath.Clean(relPath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive path %q", relPath)
	}
	return filepath.Join(s.root, clean), nil
}
