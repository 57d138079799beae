package lock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupabaseTestStore(t *testing.T, handler http.HandlerFunc) *SupabaseStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewSupabaseStore(srv.URL, "anon-key", 1, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestSupabaseStore_Exists(t *testing.T) {
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "send_locks")
		assert.Equal(t, "eq.gold_daily", r.URL.Query().Get("report_id"))
		assert.Equal(t, "eq.2024-01-01", r.URL.Query().Get("date"))

		w.Header().Set("Content-Range", "*/0")
		w.Write([]byte(`[]`))
	})

	sent, err := store.Exists(context.Background(), "gold_daily", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestSupabaseStore_ExistsFindsRow(t *testing.T) {
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "0-0/1")
		w.Write([]byte(`[{"report_id":"gold_daily"}]`))
	})

	sent, err := store.Exists(context.Background(), "gold_daily", "2024-01-01")
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestSupabaseStore_AcquireDuplicateIsNoOp(t *testing.T) {
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"send_locks_report_id_date_key\""}`))
	})

	require.NoError(t, store.Acquire(context.Background(), "gold_daily", "2024-01-01"))
}

func TestSupabaseStore_ExistsTimesOutOnStalledServer(t *testing.T) {
	release := make(chan struct{})
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	})
	// Registered after the server so the handler unblocks before Close waits
	// on it
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := store.Exists(context.Background(), "gold_daily", "2024-01-01")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 3*time.Second, "configured timeout must bound the call")
}

func TestSupabaseStore_AcquireTimesOutOnStalledServer(t *testing.T) {
	release := make(chan struct{})
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	err := store.Acquire(context.Background(), "gold_daily", "2024-01-01")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestSupabaseStore_RespectsCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	store := newSupabaseTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := store.Exists(ctx, "gold_daily", "2024-01-01")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
