package lock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps send markers in a `send_locks` table with a unique
// constraint on (report_id, date). The unique index makes the insert an
// atomic create-if-absent, which lets the primary and watchdog runners live
// on different machines.
type SupabaseStore struct {
	client  *supa.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewSupabaseStore creates a Supabase-backed lock store
func NewSupabaseStore(supabaseURL, supabaseKey string, timeout int, logger zerolog.Logger) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, supabaseKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseStore{
		client:  client,
		timeout: time.Duration(timeout) * time.Second,
		logger:  logger.With().Str("component", "lock").Logger(),
	}, nil
}

type queryResult struct {
	data []byte
	err  error
}

// execute runs one query bounded by the store timeout. The query builder has
// no context hook, so the call runs in a goroutine and its result is dropped
// when the deadline wins.
func (s *SupabaseStore) execute(ctx context.Context, op string, fn func() ([]byte, int64, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan queryResult, 1)
	go func() {
		data, _, err := fn()
		ch <- queryResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		return res.data, res.err
	}
}

// Exists reports whether a send_locks row exists for (reportID, date)
func (s *SupabaseStore) Exists(ctx context.Context, reportID, date string) (bool, error) {
	data, err := s.execute(ctx, "send lock query", func() ([]byte, int64, error) {
		return s.client.From("send_locks").
			Select("report_id", "exact", false).
			Eq("report_id", reportID).
			Eq("date", date).
			Limit(1, "").
			Execute()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check send lock: %w", err)
	}

	var rows []struct {
		ReportID string `json:"report_id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, fmt.Errorf("failed to unmarshal send locks: %w", err)
	}

	exists := len(rows) > 0

	s.logger.Debug().
		Str("report_id", reportID).
		Str("date", date).
		Bool("exists", exists).
		Msg("Checked send lock")

	return exists, nil
}

// Acquire inserts the (reportID, date) row. A duplicate-key rejection means
// the marker already exists and is a no-op success.
func (s *SupabaseStore) Acquire(ctx context.Context, reportID, date string) error {
	row := map[string]interface{}{
		"report_id":  reportID,
		"date":       date,
		"created_at": time.Now().UTC(),
	}

	_, err := s.execute(ctx, "send lock insert", func() ([]byte, int64, error) {
		return s.client.From("send_locks").
			Insert(row, false, "", "", "").
			Execute()
	})
	if err != nil {
		if isDuplicateError(err) {
			s.logger.Debug().
				Str("report_id", reportID).
				Str("date", date).
				Msg("Send lock already present")
			return nil
		}
		return fmt.Errorf("failed to insert send lock: %w", err)
	}

	s.logger.Info().
		Str("report_id", reportID).
		Str("date", date).
		Msg("Send lock acquired")

	return nil
}

// isDuplicateError checks if error is a unique-constraint violation
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "23505")
}
