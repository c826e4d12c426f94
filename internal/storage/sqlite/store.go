// Package sqlite implements the local-persistence store adapter on top of a
// single SQLite database file. Photos are stored inline as the encoded JPEG
// artifact, matching the app's single named local slot.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/fine2025/petdiary/internal/dbx"
	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/storage"
	"github.com/fine2025/petdiary/internal/storage/sqlite/migrations"
)

// Store is the SQLite-backed storage.Store implementation. Queries go
// through dbx.DBTX so tests can supply either a *sql.DB or a transaction.
type Store struct {
	db    dbx.DBTX
	sqlDB *sql.DB
}

// Open opens (or creates) the database at dsn and runs embedded migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// modernc's driver is single-writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrations: %w", err)
	}

	return &Store{db: db, sqlDB: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// NewWithDB wraps an already opened and migrated handle. Used by tests.
func NewWithDB(db dbx.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListAll returns all records ordered by date descending. The sort happens
// in SQL so callers always observe a deterministic order.
func (s *Store) ListAll(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, date, attributes, photo, updated_at, owner FROM records ORDER BY date DESC`
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
	query := `SELECT id, date, attributes, photo, updated_at, owner FROM records WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Put upserts a record by id, assigning a fresh UUID when the id is empty.
// The updated_at stamp is assigned here so every successful write carries it.
func (s *Store) Put(ctx context.Context, rec *models.Record) (*models.Record, error) {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()

	attrs, err := json.Marshal(stored.Attributes)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}

	var photo []byte
	if stored.Photo.Inline() {
		photo = stored.Photo.Data
	}

	query := `INSERT INTO records (id, date, attributes, photo, updated_at, owner)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			attributes = excluded.attributes,
			photo = excluded.photo,
			updated_at = excluded.updated_at,
			owner = excluded.owner
	`
	_, err = s.db.ExecContext(ctx, query,
		stored.ID, stored.Date, string(attrs), photo,
		stored.UpdatedAt.Format(time.RFC3339Nano), stored.Owner)
	if err != nil {
		return nil, mapErr(err)
	}

	models.FillDefaults(&stored)
	return &stored, nil
}

// Delete removes a record. Deleting an absent id returns storage.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanRecord reads one row into a normalized Record. The scan argument order
// must match the SELECT column list used by ListAll and Get.
func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var (
		rec       models.Record
		attrs     string
		photo     []byte
		updatedAt string
	)
	if err := scan(&rec.ID, &rec.Date, &attrs, &photo, &updatedAt, &rec.Owner); err != nil {
		return nil, err
	}

	// Older rows may hold attribute sets from previous schema versions;
	// unknown fields are dropped and missing ones defaulted below.
	if attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &rec.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes for %s: %w", rec.ID, err)
		}
	}
	if len(photo) > 0 {
		rec.Photo = &models.Photo{Data: photo}
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = t
	}

	models.FillDefaults(&rec)
	return &rec, nil
}

// mapErr converts driver failures into the adapter's sentinel taxonomy.
// SQLITE_FULL is the quota signal that must reach the user as such.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database or disk is full") {
		return fmt.Errorf("%w: %v", storage.ErrCapacityExceeded, err)
	}
	if strings.Contains(msg, "unable to open database") {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}

var _ storage.Store = (*Store)(nil)
