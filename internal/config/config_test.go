package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.Backend)
	assert.Equal(t, "petdiary.db", c.DatabaseDSN)
	assert.Empty(t, c.AllowedEmails)
	assert.Equal(t, 300, c.MaxPhotoDimension)
	assert.InDelta(t, 0.4, c.PhotoQuality, 1e-9)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "petdiary.db", cfg.DatabaseDSN)
	assert.Equal(t, 300, cfg.MaxPhotoDimension)
}
