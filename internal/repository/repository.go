// Package repository owns the authoritative in-memory view of the diary.
// It is the only component allowed to mutate the backing store, it enforces
// the one-record-per-date invariant, and it reloads the cache wholesale
// after every successful mutation.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fine2025/petdiary/internal/imaging"
	"github.com/fine2025/petdiary/internal/logging"
	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/storage"
)

var (
	// ErrDuplicateDate — a create was attempted for a date that already has
	// a record. The caller should switch to editing the existing record.
	ErrDuplicateDate = errors.New("a record for this date already exists")

	// ErrInvalidDate — the submitted date is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNotReady — the cache has not been loaded yet; call LoadAll first.
	ErrNotReady = errors.New("records are not loaded")
)

// State is the repository lifecycle per diary session.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// Config bounds the photo pipeline output.
type Config struct {
	// MaxPhotoDimension bounds the longer side of a stored photo, in pixels.
	MaxPhotoDimension int
	// PhotoQuality is the lossy encode quality in [0,1].
	PhotoQuality float64
}

// SubmitParams carries one form submission.
type SubmitParams struct {
	// Date is the natural key, YYYY-MM-DD.
	Date string
	// Attributes holds the observation fields as entered.
	Attributes models.Attributes
	// PhotoBytes is a raw uploaded image, or nil when no new photo was
	// attached. Nil on an update means "keep the existing photo".
	PhotoBytes []byte
	// ExistingID selects update mode: empty means create.
	ExistingID string
	// Owner is the authenticated submitter's email.
	Owner string
}

// Repository is the cache-owning core. All methods are called from the
// single presentation goroutine; completions of consecutive operations may
// interleave at the store, which is why LoadAll always replaces the cache
// wholesale instead of merging.
type Repository struct {
	store storage.Store
	log   logging.Logger
	cfg   Config

	state  State
	loaded bool            // at least one LoadAll has succeeded
	cache  []models.Record // date descending, as listed by the store
}

func New(store storage.Store, cfg Config, log logging.Logger) *Repository {
	return &Repository{store: store, cfg: cfg, log: log, state: Uninitialized}
}

// State returns the current lifecycle state.
func (r *Repository) State() State {
	return r.state
}

// LoadAll fetches every record from the store and replaces the cache
// wholesale. Safe to call repeatedly; two calls with no mutation in between
// observe identical contents. A failed load keeps the previous cache and
// moves to LoadFailed so the caller can retry.
func (r *Repository) LoadAll(ctx context.Context) error {
	r.state = Loading

	records, err := r.store.ListAll(ctx)
	if err != nil {
		r.state = LoadFailed
		return fmt.Errorf("load records: %w", err)
	}

	r.cache = records
	r.state = Ready
	r.loaded = true
	r.log.Debug(ctx, "cache reloaded", "count", len(records))
	return nil
}

// FindByDate is a pure cache lookup; it never touches the store. The second
// return is false when no record exists for the date. This is the basis for
// the presentation layer's edit-vs-create mode selection.
func (r *Repository) FindByDate(date string) (*models.Record, bool) {
	for i := range r.cache {
		if r.cache[i].Date == date {
			rec := r.cache[i]
			return &rec, true
		}
	}
	return nil, false
}

// FindByID returns the cached record with the given id, if any.
func (r *Repository) FindByID(id string) (*models.Record, bool) {
	for i := range r.cache {
		if r.cache[i].ID == id {
			rec := r.cache[i]
			return &rec, true
		}
	}
	return nil, false
}

// Records returns the cached records for rendering, date descending.
// Callers must treat the result as read-only.
func (r *Repository) Records() []models.Record {
	out := make([]models.Record, len(r.cache))
	copy(out, r.cache)
	return out
}

// Submit persists one form submission: an update when ExistingID is set, a
// create otherwise. Creates are rejected with ErrDuplicateDate when the
// cache already holds a record for the date — the store does not enforce
// that invariant, so the cache must have been populated by a successful
// LoadAll at least once. A stale cache after a later failed reload is still
// usable; a cache that never loaded is not, the duplicate check would run
// against nothing. On any failure the cache is left exactly as of the last
// successful LoadAll; on success it is reloaded before returning.
func (r *Repository) Submit(ctx context.Context, p SubmitParams) (*models.Record, error) {
	if !r.loaded {
		return nil, ErrNotReady
	}
	if !models.ValidDate(p.Date) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, p.Date)
	}

	photo, err := r.resolvePhoto(ctx, p)
	if err != nil {
		// A failed photo aborts the whole submission: saving without the
		// photo the user attached would be silent data loss.
		return nil, err
	}

	if p.ExistingID == "" {
		if existing, ok := r.FindByDate(p.Date); ok {
			return nil, fmt.Errorf("%w: %s (id %s)", ErrDuplicateDate, p.Date, existing.ID)
		}
	}

	rec := models.Record{
		ID:         p.ExistingID,
		Date:       p.Date,
		Attributes: p.Attributes,
		Photo:      photo,
		Owner:      p.Owner,
	}

	persisted, err := r.store.Put(ctx, &rec)
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	r.reloadAfterMutation(ctx, "submit")
	r.log.Info(ctx, "record saved", "date", persisted.Date, "id", persisted.ID)
	return persisted, nil
}

// resolvePhoto produces the photo for a submission: a freshly compressed
// artifact when new bytes were attached, the existing record's photo on an
// update without new bytes, nil otherwise.
func (r *Repository) resolvePhoto(ctx context.Context, p SubmitParams) (*models.Photo, error) {
	if len(p.PhotoBytes) > 0 {
		data, size, err := imaging.Compress(p.PhotoBytes, r.cfg.MaxPhotoDimension, r.cfg.PhotoQuality)
		if err != nil {
			return nil, fmt.Errorf("compress photo: %w", err)
		}
		r.log.Debug(ctx, "photo compressed",
			"bytes", len(data), "width", size.Width, "height", size.Height)
		return &models.Photo{Data: data}, nil
	}

	if p.ExistingID != "" {
		if existing, ok := r.FindByID(p.ExistingID); ok {
			return existing.Photo, nil
		}
	}
	return nil, nil
}

// DeleteRecord removes a record from the store and reloads the cache.
// Deleting an id that is already gone returns storage.ErrNotFound after
// refreshing the cache; callers may treat that as a successful no-op.
// Confirmation is the presentation layer's concern.
func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	if !r.loaded {
		return ErrNotReady
	}

	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Already absent: refresh so the stale cache entry disappears.
			r.reloadAfterMutation(ctx, "delete")
			return err
		}
		return fmt.Errorf("delete record: %w", err)
	}

	r.reloadAfterMutation(ctx, "delete")
	r.log.Info(ctx, "record deleted", "id", id)
	return nil
}

// reloadAfterMutation refreshes the cache after a store write. The write
// itself succeeded, so a failed refresh is reported via state (LoadFailed,
// retry with LoadAll) rather than failing the mutation retroactively.
func (r *Repository) reloadAfterMutation(ctx context.Context, op string) {
	if err := r.LoadAll(ctx); err != nil {
		r.log.Warn(ctx, "cache reload after mutation failed", "op", op, "error", err)
	}
}
