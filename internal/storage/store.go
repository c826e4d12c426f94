// Package storage defines the store adapter contract shared by every
// persistence backend, plus the sentinel errors adapters surface.
//
// Adapters persist records as they are given: in particular they do NOT
// enforce the one-record-per-date invariant. That check belongs to the
// repository, which owns the cache needed to do it cheaply.
package storage

import (
	"context"
	"errors"

	"github.com/fine2025/petdiary/internal/models"
)

// Sentinel errors returned by adapters. Callers match them with errors.Is.
var (
	// ErrNotFound — no record with the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrCapacityExceeded — the backing store's quota is exhausted. Must be
	// surfaced to the user, never swallowed: silently dropping the write
	// would lose data.
	ErrCapacityExceeded = errors.New("storage capacity exceeded")

	// ErrUnavailable — the backend is unreachable.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is the backend-agnostic persistence contract. Implementations exist
// for local SQLite persistence and for a remote Postgres document store with
// external photo blobs; both are selected at construction time so the
// repository is written exactly once.
type Store interface {
	// ListAll returns every record sorted by date descending. Records are
	// returned normalized (defaults filled).
	ListAll(ctx context.Context) ([]models.Record, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Record, error)

	// Put persists the record: creates it (assigning a fresh ID) when
	// rec.ID is empty, overwrites the existing row otherwise. The returned
	// record carries the assigned ID and any storage-side photo rewrite
	// (e.g. inline bytes replaced by a blob reference).
	Put(ctx context.Context, rec *models.Record) (*models.Record, error)

	// Delete removes the record with the given id, releasing any externally
	// stored photo blob best-effort. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
