package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Counter keeps the persistent "Nº X" numbering per report, stored as a
// small JSON map on disk. A corrupt or missing file restarts from zero.
type Counter struct {
	path   string
	logger zerolog.Logger
}

// NewCounter creates a counter backed by the JSON file at path
func NewCounter(path string, logger zerolog.Logger) *Counter {
	return &Counter{
		path:   path,
		logger: logger.With().Str("component", "counter").Logger(),
	}
}

// Next increments and persists the counter for key, returning the new value.
// The incremented value is returned even when persisting fails, so the title
// stays usable; the caller decides whether the error is fatal.
func (c *Counter) Next(key string) (int, error) {
	counts := map[string]int{}

	data, err := os.ReadFile(c.path)
	if err == nil {
		if err := json.Unmarshal(data, &counts); err != nil {
			c.logger.Warn().
				Err(err).
				Str("path", c.path).
				Msg("Counter file corrupt, resetting")
			counts = map[string]int{}
		}
	}

	counts[key]++
	next := counts[key]

	if err := c.persist(counts); err != nil {
		return next, fmt.Errorf("failed to persist counter: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("value", next).
		Msg("Counter incremented")

	return next, nil
}

func (c *Counter) persist(counts map[string]int) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create counter directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal counters: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write counter file: %w", err)
	}

	return nil
}
