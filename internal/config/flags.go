package config

import (
	"flag"
	"os"

	"github.com/fine2025/petdiary/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   store backend, "sqlite" or "postgres" (default from Config)
//	-d string   sqlite file path or PostgreSQL DSN (default from Config)
//	-m int      max photo dimension in pixels (default from Config)
//	-q float    photo encode quality in [0,1] (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-m", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "store backend (sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "sqlite file path or PostgreSQL DSN")
	fs.IntVar(&cfg.MaxPhotoDimension, "m", cfg.MaxPhotoDimension, "max photo dimension (pixels, longer side)")
	fs.Float64Var(&cfg.PhotoQuality, "q", cfg.PhotoQuality, "photo encode quality in [0,1]")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
