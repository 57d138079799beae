package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore keeps one sentinel file per (reportID, date) under a directory.
// The marker is created with O_EXCL, so check-then-create between the primary
// and watchdog runs cannot both succeed.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file-based lock store rooted at dir
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "lock").Logger(),
	}
}

// path returns the sentinel file path for (reportID, date)
func (s *FileStore) path(reportID, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.sent", reportID, date))
}

// Exists reports whether the sentinel file for (reportID, date) is present
func (s *FileStore) Exists(_ context.Context, reportID, date string) (bool, error) {
	_, err := os.Stat(s.path(reportID, date))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat sentinel file: %w", err)
}

// Acquire creates the sentinel file exclusively. An already existing
// sentinel is a no-op success.
func (s *FileStore) Acquire(_ context.Context, reportID, date string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sentinel directory: %w", err)
	}

	path := s.path(reportID, date)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Debug().
				Str("report_id", reportID).
				Str("date", date).
				Msg("Sentinel already present")
			return nil
		}
		return fmt.Errorf("failed to create sentinel file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n", date); err != nil {
		return fmt.Errorf("failed to write sentinel file: %w", err)
	}

	s.logger.Info().
		Str("report_id", reportID).
		Str("date", date).
		Str("path", path).
		Msg("Send lock acquired")

	return nil
}
