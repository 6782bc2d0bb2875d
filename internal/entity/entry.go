package entity

import "time"

// NeverUpdated is reported for bosses without a stored timestamp.
const NeverUpdated = "Never updated"

// legacyTimeLayout matches timestamps written without a zone offset.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

// Entry is the reshaped counters table for one boss.
//
// Rows is built by transposing the per-table chunk lists, so Rows[i][j] is the
// i-th counter listed under Headers[j]. BodyImages follows the same layout.
// A nil image reference means the position has no image.
type Entry struct {
	Title        string      `json:"title"`
	URL          string      `json:"url"`
	Headers      []string    `json:"headers"`
	Rows         [][]string  `json:"rows"`
	HeaderImages []*string   `json:"header_images"`
	BodyImages   [][]*string `json:"body_images"`
	LastUpdated  string      `json:"last_updated"`
}

// EmptyEntry is returned for bosses that were never populated.
func EmptyEntry() Entry {
	return Entry{}.Normalize()
}

// Normalize replaces nil slices with empty ones so every field serializes.
func (e Entry) Normalize() Entry {
	if e.Headers == nil {
		e.Headers = []string{}
	}
	if e.Rows == nil {
		e.Rows = [][]string{}
	}
	for i, row := range e.Rows {
		if row == nil {
			e.Rows[i] = []string{}
		}
	}
	if e.HeaderImages == nil {
		e.HeaderImages = []*string{}
	}
	if e.BodyImages == nil {
		e.BodyImages = [][]*string{}
	}
	for i, row := range e.BodyImages {
		if row == nil {
			e.BodyImages[i] = []*string{}
		}
	}
	return e
}

// Complete reports whether the entry carries a usable table.
func (e Entry) Complete() bool {
	return len(e.Headers) > 0 && len(e.Rows) > 0
}

// UpdatedAt parses LastUpdated. ok is false when it is empty or malformed.
func (e Entry) UpdatedAt() (t time.Time, ok bool) {
	if e.LastUpdated == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, e.LastUpdated); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, e.LastUpdated, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way LastUpdated is stored.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
