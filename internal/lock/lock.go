// Package lock enforces at-most-one delivery per report per calendar day.
// The primary run and the watchdog run may execute on different machines, so
// the marker lives in shared storage with an atomic create-if-absent
// operation rather than a racy read-then-write.
package lock

import "context"

// Store persists the once-per-day send markers
type Store interface {
	// Exists reports whether a marker for (reportID, date) is present.
	// Date is formatted as YYYY-MM-DD in the report timezone.
	Exists(ctx context.Context, reportID, date string) (bool, error)

	// Acquire creates the marker. Creating a marker that already exists is a
	// no-op success; only an underlying storage-write failure is an error.
	Acquire(ctx context.Context, reportID, date string) error
}
