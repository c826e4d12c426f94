package config

// Config holds runtime settings for the pet diary CLI.
//
// Fields:
//   - Backend: which store adapter to use, "sqlite" (local file) or "postgres".
//   - DatabaseDSN: sqlite file path, or PostgreSQL DSN (pgx) for the remote backend.
//   - AllowedEmails: the owner allow-list; only these identities may use the diary.
//   - TokenPassphrase: passphrase the HMAC signing key is derived from (HS256).
//   - S3AccessKey / S3SecretKey: credentials for the S3-compatible photo store.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings (remote backend only).
//   - MaxPhotoDimension: pixel bound for the longer side of a stored photo.
//   - PhotoQuality: lossy encode quality in [0,1].
type Config struct {
	Backend           string
	DatabaseDSN       string
	AllowedEmails     []string
	TokenPassphrase   string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	MaxPhotoDimension int
	PhotoQuality      float64
}

// LoadDefaults populates c with sensible defaults: a local sqlite file next
// to the binary and the stock photo bounds.
// NOTE: The passphrase default is insecure and should be overridden.
func (c *Config) LoadDefaults() {
	c.Backend = "sqlite"
	c.DatabaseDSN = "petdiary.db"
	c.AllowedEmails = nil
	c.TokenPassphrase = "petdiary-dev"
	c.S3Bucket = "petdiary"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.MaxPhotoDimension = 300
	c.PhotoQuality = 0.4
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
