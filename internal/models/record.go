// Package models defines the diary record types shared by every store
// backend and by the repository core.
package models

import "time"

// DateLayout is the canonical calendar-date form used as the natural key.
// Lexicographic order of this form is also chronological, so stores can
// sort on the raw string.
const DateLayout = "2006-01-02"

// Record is one diary entry. Per diary there is at most one non-deleted
// record for a given Date; the repository enforces that, not the stores.
type Record struct {
	// ID is the store-assigned identifier. Empty until first Put; stable
	// for the record's lifetime afterwards.
	ID string `json:"id"`

	// Date is the natural key in YYYY-MM-DD form.
	Date string `json:"date"`

	// Attributes holds the observation fields for the day.
	Attributes Attributes `json:"attributes"`

	// Photo is the optional compressed image artifact. Nil means no photo.
	Photo *Photo `json:"photo,omitempty"`

	// UpdatedAt is the last modification time in UTC. Advisory only; it is
	// never used for conflict resolution.
	UpdatedAt time.Time `json:"updated_at"`

	// Owner is the email of the authenticated submitter. Advisory audit field.
	Owner string `json:"owner,omitempty"`
}

// Attributes is the open set of per-day observation fields. Values are
// free-form strings; enumerations are a form-level concern. Records written
// by earlier schema versions may lack newer fields, so readers must apply
// FillDefaults before handing a record to the presentation layer.
type Attributes struct {
	Weather         string `json:"weather,omitempty"`
	PoopCount       string `json:"poop_count,omitempty"`
	PoopQuality     string `json:"poop_quality,omitempty"`
	PeeCount        string `json:"pee_count,omitempty"`
	PeeColor        string `json:"pee_color,omitempty"`
	AppetiteMorning string `json:"appetite_morning,omitempty"`
	AppetiteNoon    string `json:"appetite_noon,omitempty"`
	AppetiteNight   string `json:"appetite_night,omitempty"`
	SleepTime       string `json:"sleep_time,omitempty"`
	Walk            string `json:"walk,omitempty"`
	OtherNotes      string `json:"other_notes,omitempty"`
}

// Photo is a compressed image artifact attached to at most one record.
// Exactly one representation is populated: Data for inline storage (local
// backend) or Key/URL for external blob storage (remote backend). The bytes
// are always the pipeline's re-encoded output, never the raw upload.
type Photo struct {
	// Data is the encoded JPEG artifact, inline.
	Data []byte `json:"data,omitempty"`

	// Key locates the artifact in external blob storage.
	Key string `json:"key,omitempty"`

	// URL is a display address for an externally stored artifact.
	URL string `json:"url,omitempty"`
}

// Inline reports whether the photo bytes are embedded in the record itself.
func (p *Photo) Inline() bool {
	return p != nil && len(p.Data) > 0
}

// Defaults filled on read for fields missing from older records:
// counts "0", enumerated observations "unknown", free text empty.
const (
	DefaultCount       = "0"
	DefaultObservation = "unknown"
)

// FillDefaults normalizes a record read from any backend. It is pure: the
// input is modified in place and no I/O happens. Applied uniformly so the
// presentation layer never sees a partially filled record.
func FillDefaults(r *Record) {
	a := &r.Attributes
	if a.Weather == "" {
		a.Weather = DefaultObservation
	}
	if a.PoopCount == "" {
		a.PoopCount = DefaultCount
	}
	if a.PoopQuality == "" {
		a.PoopQuality = DefaultObservation
	}
	if a.PeeCount == "" {
		a.PeeCount = DefaultCount
	}
	if a.PeeColor == "" {
		a.PeeColor = DefaultObservation
	}
	if a.AppetiteMorning == "" {
		a.AppetiteMorning = DefaultObservation
	}
	if a.AppetiteNoon == "" {
		a.AppetiteNoon = DefaultObservation
	}
	if a.AppetiteNight == "" {
		a.AppetiteNight = DefaultObservation
	}
	if a.SleepTime == "" {
		a.SleepTime = DefaultObservation
	}
	if a.Walk == "" {
		a.Walk = DefaultObservation
	}
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	// time.Parse accepts some shapes we don't (e.g. no zero padding);
	// re-formatting guarantees the canonical form round-trips.
	return t.Format(DateLayout) == s
}

// Today returns the current calendar date in canonical form.
func Today() string {
	return time.Now().Format(DateLayout)
}
