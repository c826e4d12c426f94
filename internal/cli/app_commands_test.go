package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fine2025/petdiary/internal/logging"
	"github.com/fine2025/petdiary/internal/models"
	"github.com/fine2025/petdiary/internal/repository"
	"github.com/fine2025/petdiary/internal/session"
	"github.com/fine2025/petdiary/internal/storage"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

// memStore is a minimal in-memory storage.Store.
type memStore struct {
	records map[string]models.Record
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]models.Record{}}
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Record, error) {
	out := make([]models.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id string) (*models.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) Put(ctx context.Context, rec *models.Record) (*models.Record, error) {
	stored := *rec
	if stored.ID == "" {
		m.nextID++
		stored.ID = fmt.Sprintf("id-%d", m.nextID)
	}
	m.records[stored.ID] = stored
	return &stored, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestApp(t *testing.T, store storage.Store, in *bufio.Reader) (*App, *bytes.Buffer) {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := repository.New(store, repository.Config{MaxPhotoDimension: 100, PhotoQuality: 0.4}, log)
	require.NoError(t, repo.LoadAll(context.Background()))

	gate := session.NewGate([]string{"alice@example.com"}, []byte("test-key"))

	var out bytes.Buffer
	return &App{repo: repo, gate: gate, log: log, reader: in, out: &out}, &out
}

// formLines produces inputs for the full attribute walk: weather, the nine
// fields after it, other notes, then the photo path prompt.
func formLines(weather, notes, photoPath string) []string {
	lines := []string{weather}
	for i := 0; i < 9; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, notes, photoPath)
	return lines
}

// ------------ tests ------------

func TestOpen_CreatesRecord(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines(formLines("sunny", "first entry", "")...))

	require.NoError(t, app.Open(context.Background(), "2024-03-01"))

	require.Contains(t, out.String(), "New record for 2024-03-01")
	require.Contains(t, out.String(), "Saved 2024-03-01")
	require.Contains(t, out.String(), "--- 2024-03-01 ---")
	require.Len(t, store.records, 1)
	for _, r := range store.records {
		require.Equal(t, "sunny", r.Attributes.Weather)
		require.Equal(t, "first entry", r.Attributes.OtherNotes)
		require.Equal(t, models.DefaultCount, r.Attributes.PoopCount)
		require.Equal(t, sleepSuggestion, r.Attributes.SleepTime)
	}
}

func TestOpen_EditKeepsIDAndDefaults(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines(formLines("", "", "")...))

	created, err := app.repo.Submit(context.Background(), repository.SubmitParams{
		Date:       "2024-03-02",
		Attributes: models.Attributes{Weather: "cloudy", Walk: "done"},
	})
	require.NoError(t, err)

	// Enter on every prompt keeps the saved values.
	require.NoError(t, app.Open(context.Background(), "2024-03-02"))
	require.Contains(t, out.String(), "Editing the record for 2024-03-02")

	got := store.records[created.ID]
	require.Equal(t, "cloudy", got.Attributes.Weather)
	require.Equal(t, "done", got.Attributes.Walk)
	require.Len(t, store.records, 1)
}

func TestOpen_InvalidDate(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	err := app.Open(context.Background(), "03/01/2024")
	require.ErrorIs(t, err, repository.ErrInvalidDate)
	require.Contains(t, out.String(), "not a date")
	require.Empty(t, store.records)
}

func TestOpen_PhotoAttached(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	oldRead := readFile
	defer func() { readFile = oldRead }()
	readFile = func(path string) ([]byte, error) {
		require.Equal(t, "/tmp/dog.jpg", path)
		return buf.Bytes(), nil
	}

	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines(formLines("sunny", "", "/tmp/dog.jpg")...))

	require.NoError(t, app.Open(context.Background(), "2024-03-03"))
	require.Contains(t, out.String(), "Photo attached")

	for _, r := range store.records {
		require.True(t, r.Photo.Inline())
		require.Less(t, len(r.Photo.Data), buf.Len(), "stored photo should be compressed")
	}
}

func TestDelete_Confirmed(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines("y"))

	_, err := app.repo.Submit(context.Background(), repository.SubmitParams{Date: "2024-03-04"})
	require.NoError(t, err)

	require.NoError(t, app.Delete(context.Background(), "2024-03-04"))
	require.Contains(t, out.String(), "Deleted 2024-03-04")
	require.Empty(t, store.records)
}

func TestDelete_Cancelled(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines("n"))

	_, err := app.repo.Submit(context.Background(), repository.SubmitParams{Date: "2024-03-05"})
	require.NoError(t, err)

	require.NoError(t, app.Delete(context.Background(), "2024-03-05"))
	require.Contains(t, out.String(), "Cancelled")
	require.Len(t, store.records, 1)
}

func TestDelete_AlreadyGoneIsNoOp(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines("y"))

	created, err := app.repo.Submit(context.Background(), repository.SubmitParams{Date: "2024-03-07"})
	require.NoError(t, err)

	// The record vanishes behind the cache's back.
	delete(store.records, created.ID)

	require.NoError(t, app.Delete(context.Background(), "2024-03-07"))
	require.Contains(t, out.String(), "already gone")
	require.NotContains(t, out.String(), "Could not delete")

	// The refresh dropped the stale cache entry.
	_, found := app.repo.FindByDate("2024-03-07")
	require.False(t, found)
}

func TestDelete_NoRecordIsNoOp(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	require.NoError(t, app.Delete(context.Background(), "2024-03-06"))
	require.Contains(t, out.String(), "No record for 2024-03-06")
}

func TestLogin_SuccessLoadsDiary(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	token, err := app.gate.IssueToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	oldSecret := getSecret
	defer func() { getSecret = oldSecret }()
	getSecret = func(io.Writer, string) ([]byte, error) { return []byte(token), nil }

	require.NoError(t, app.Login(context.Background()))
	require.True(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Welcome, alice@example.com!")
	require.Contains(t, out.String(), "Loaded 0 records")
}

func TestLogin_NotOnAllowList(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	token, err := app.gate.IssueToken("mallory@example.com", time.Hour)
	require.NoError(t, err)

	oldSecret := getSecret
	defer func() { getSecret = oldSecret }()
	getSecret = func(io.Writer, string) ([]byte, error) { return []byte(token), nil }

	err = app.Login(context.Background())
	require.ErrorIs(t, err, session.ErrNotAllowed)
	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "not on the diary's allow-list")
}

func TestLogin_InvalidToken(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	oldSecret := getSecret
	defer func() { getSecret = oldSecret }()
	getSecret = func(io.Writer, string) ([]byte, error) { return []byte("not-a-jwt"), nil }

	err := app.Login(context.Background())
	require.ErrorIs(t, err, session.ErrInvalidToken)
	require.Contains(t, out.String(), "invalid or expired")
}

func TestToken_RejectsUnknownEmail(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines("mallory@example.com"))

	err := app.Token(context.Background())
	require.ErrorIs(t, err, session.ErrNotAllowed)
	require.Contains(t, out.String(), "not on the allow-list")
}

func TestToken_MintsForAllowedEmail(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines("alice@example.com"))

	require.NoError(t, app.Token(context.Background()))
	require.Contains(t, out.String(), "Token (valid")

	// The minted token authorizes a login.
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	token := lines[len(lines)-1]
	id, err := app.gate.Authorize(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", id.Email)
}

func TestRunExclusive_BusyGuard(t *testing.T) {
	store := newMemStore()
	app, out := newTestApp(t, store, readerFromLines())

	app.busy = true
	require.NoError(t, app.List(context.Background()))
	require.Contains(t, out.String(), "still in progress")
}
