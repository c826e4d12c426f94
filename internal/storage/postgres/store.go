// Package postgres implements the remote document-store adapter: one logical
// collection of record documents keyed by generated id, queried by date
// descending. Photo artifacts live in external blob storage; rows keep only
// the object key and display URL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/fine2025/petdiary/internal/dbx"
	"github.com/fine2025/petdiary/internal/logging"
	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/storage"
	"github.com/fine2025/petdiary/internal/storage/blob"
	"github.com/fine2025/petdiary/internal/storage/postgres/migrations"
)

// Store is the Postgres-backed storage.Store implementation.
type Store struct {
	db    *sql.DB
	blobs blob.Store
	log   logging.Logger
}

// Open connects to dsn, runs embedded migrations and wires the blob backend
// used for photos.
func Open(ctx context.Context, dsn string, blobs blob.Store, log logging.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", mapErr(err))
	}

	return &Store{db: db, blobs: blobs, log: log}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// NewWithDB wraps an already opened and migrated handle. Used by tests.
func NewWithDB(db *sql.DB, blobs blob.Store, log logging.Logger) *Store {
	return &Store{db: db, blobs: blobs, log: log}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ListAll returns all records ordered by date descending.
func (s *Store) ListAll(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, date, attributes, photo_key, photo_url, updated_at, owner FROM records ORDER BY date DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return result, nil
}

// Get returns one record by id, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT id, date, attributes, photo_key, photo_url, updated_at, owner FROM records WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, mapErr(err)
	}
	return rec, nil
}

// Put upserts a record. A fresh inline artifact is uploaded to blob storage
// first; the row then stores its key and URL. When the upsert replaces a
// previously stored photo, the orphaned blob is deleted best-effort after
// the transaction commits.
func (s *Store) Put(ctx context.Context, rec *models.Record) (*models.Record, error) {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()

	var newKey, newURL string
	uploaded := false
	switch {
	case stored.Photo.Inline():
		key, url, err := s.blobs.Put(ctx, stored.Photo.Data)
		if err != nil {
			return nil, fmt.Errorf("photo upload: %w", mapErr(err))
		}
		newKey, newURL = key, url
		uploaded = true
		stored.Photo = &models.Photo{Key: key, URL: url}
	case stored.Photo != nil:
		// Retained photo carried over from the existing record.
		newKey, newURL = stored.Photo.Key, stored.Photo.URL
	}

	attrs, err := json.Marshal(stored.Attributes)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}

	var oldKey string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// Remember the photo the row held before, to release it if replaced.
		row := tx.QueryRowContext(ctx, `SELECT photo_key FROM records WHERE id = $1`, stored.ID)
		if scanErr := row.Scan(&oldKey); scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
			return scanErr
		}

		query := `INSERT INTO records (id, date, attributes, photo_key, photo_url, updated_at, owner)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id)
			DO UPDATE SET
				date = EXCLUDED.date,
				attributes = EXCLUDED.attributes,
				photo_key = EXCLUDED.photo_key,
				photo_url = EXCLUDED.photo_url,
				updated_at = EXCLUDED.updated_at,
				owner = EXCLUDED.owner
		`
		_, execErr := tx.ExecContext(ctx, query,
			stored.ID, stored.Date, string(attrs), newKey, newURL,
			stored.UpdatedAt, stored.Owner)
		return execErr
	})
	if err != nil {
		// The row write failed after an upload; drop the fresh blob so it
		// doesn't leak.
		if uploaded {
			s.deleteBlob(ctx, newKey)
		}
		return nil, mapErr(err)
	}

	if oldKey != "" && oldKey != newKey {
		s.deleteBlob(ctx, oldKey)
	}

	models.FillDefaults(&stored)
	return &stored, nil
}

// Delete removes a record row and best-effort releases its photo blob.
func (s *Store) Delete(ctx context.Context, id string) error {
	var photoKey string
	row := s.db.QueryRowContext(ctx, `DELETE FROM records WHERE id = $1 RETURNING photo_key`, id)
	if err := row.Scan(&photoKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return mapErr(err)
	}

	if photoKey != "" {
		s.deleteBlob(ctx, photoKey)
	}
	return nil
}

// deleteBlob releases an object without failing the caller. A leaked blob is
// an inconvenience; a lost record write would be data loss.
func (s *Store) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "orphaned photo blob not deleted", "key", key, "error", err)
	}
}

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var (
		rec      models.Record
		attrs    []byte
		photoKey string
		photoURL string
	)
	if err := scan(&rec.ID, &rec.Date, &attrs, &photoKey, &photoURL, &rec.UpdatedAt, &rec.Owner); err != nil {
		return nil, err
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &rec.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes for %s: %w", rec.ID, err)
		}
	}
	if photoKey != "" {
		rec.Photo = &models.Photo{Key: photoKey, URL: photoURL}
	}

	models.FillDefaults(&rec)
	return &rec, nil
}

// mapErr converts backend failures into the adapter's sentinel taxonomy.
// Class 53 is Postgres "insufficient resources" (53100 is disk_full).
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "53" {
			return fmt.Errorf("%w: %v", storage.ErrCapacityExceeded, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return err
}

var _ storage.Store = (*Store)(nil)
