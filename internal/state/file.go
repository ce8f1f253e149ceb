package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"wanwatch/internal/types"

	"go.uber.org/zap"
)

// FileStore keeps the alert record as a lockfile holding one timestamp.
// The file exists exactly while an alert is active.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Path returns the lockfile location
func (s *FileStore) Path() string {
	return s.path
}

// Read implements Store
func (s *FileStore) Read(_ context.Context) (types.AlertState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("No lockfile found, alarm not previously sent",
				zap.String("path", s.path))
			return types.Inactive(), nil
		}
		return types.Inactive(), fmt.Errorf("failed to read lockfile %s: %w", s.path, err)
	}

	raisedAt, err := ParseTimestamp(string(data))
	if err != nil {
		s.logger.Warn("Lockfile is corrupt, treating alert as inactive",
			zap.String("path", s.path),
			zap.Error(err))
		return types.Inactive(), nil
	}

	return types.ActiveSince(raisedAt), nil
}

// Write implements Store. The record is written to a temporary file in the
// same directory and renamed over the lockfile, so readers see either the
// old record or the complete new one.
func (s *FileStore) Write(_ context.Context, raisedAt time.Time) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(FormatTimestamp(raisedAt)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set state file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to save state file: %w", err)
	}
	s.syncDir(dir)

	s.logger.Info("Lockfile written",
		zap.String("path", s.path),
		zap.Time("raised_at", raisedAt))
	return nil
}

// Clear implements Store
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	s.syncDir(filepath.Dir(s.path))

	s.logger.Info("Lockfile removed", zap.String("path", s.path))
	return nil
}

// syncDir flushes the directory entry so a rename or removal survives a crash
func (s *FileStore) syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	if err := d.Sync(); err != nil {
		s.logger.Debug("Failed to sync state directory", zap.String("dir", dir), zap.Error(err))
	}
	_ = d.Close()
}
