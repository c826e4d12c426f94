package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"backend":             "postgres",
		"database_dsn":        "postgres://u:p@db:5432/petdiary",
		"allowed_emails":      []string{"alice@example.com", "bob@example.com"},
		"token_passphrase":    "correct horse",
		"s3_bucket":           "photos",
		"max_photo_dimension": 450,
		"photo_quality":       0.5,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "postgres", cfg.Backend)
		assert.Equal(t, "postgres://u:p@db:5432/petdiary", cfg.DatabaseDSN)
		assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, cfg.AllowedEmails)
		assert.Equal(t, "correct horse", cfg.TokenPassphrase)
		assert.Equal(t, "photos", cfg.S3Bucket)
		assert.Equal(t, 450, cfg.MaxPhotoDimension)
		assert.InDelta(t, 0.5, cfg.PhotoQuality, 1e-9)
	})

	t.Run("omitted keys keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"backend": "postgres",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "postgres", cfg.Backend)
		assert.Equal(t, "petdiary.db", cfg.DatabaseDSN)
		assert.Equal(t, 300, cfg.MaxPhotoDimension, "a partial file must not zero the photo bound")
		assert.InDelta(t, 0.4, cfg.PhotoQuality, 1e-9)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			Backend:     "sqlite",
			DatabaseDSN: "keep.db",
		}
		parseJson(cfg)

		assert.Equal(t, "sqlite", cfg.Backend)
		assert.Equal(t, "keep.db", cfg.DatabaseDSN)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
