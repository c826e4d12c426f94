package config

import (
	"encoding/json"
	"os"

	"github.com/fine2025/petdiary/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields are
// pointers so a key absent from the file can be told apart from a zero
// value; only keys actually present overlay the runtime Config.
type JsonConfig struct {
	Backend           *string  `json:"backend"`
	DatabaseDSN       *string  `json:"database_dsn"`
	AllowedEmails     []string `json:"allowed_emails"`
	TokenPassphrase   *string  `json:"token_passphrase"`
	S3AccessKey       *string  `json:"s3_access_key"`
	S3SecretKey       *string  `json:"s3_secret_key"`
	S3Bucket          *string  `json:"s3_bucket"`
	S3Region          *string  `json:"s3_region"`
	S3BaseEndpoint    *string  `json:"s3_base_endpoint"`
	MaxPhotoDimension *int     `json:"max_photo_dimension"`
	PhotoQuality      *float64 `json:"photo_quality"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies only the fields present in the file into the provided Config;
//     omitted keys keep their defaults (a partial file must not zero out
//     the photo bounds).
//   - Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Backend != nil {
		cfg.Backend = *jc.Backend
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.AllowedEmails != nil {
		cfg.AllowedEmails = jc.AllowedEmails
	}
	if jc.TokenPassphrase != nil {
		cfg.TokenPassphrase = *jc.TokenPassphrase
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
	if jc.MaxPhotoDimension != nil {
		cfg.MaxPhotoDimension = *jc.MaxPhotoDimension
	}
	if jc.PhotoQuality != nil {
		cfg.PhotoQuality = *jc.PhotoQuality
	}
}
