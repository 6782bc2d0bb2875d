package entity

// StatusReport summarizes the freshness of the stored collection.
type StatusReport struct {
	LastUpdated map[string]string `json:"last_updated"`
	IsUpdateDay bool              `json:"is_update_day"`
	DataMissing bool              `json:"data_missing"`
}

// RefreshSummary is the outcome of one refresh run.
type RefreshSummary struct {
	RunID     string            `json:"run_id"`
	Refreshed []string          `json:"refreshed"`
	Skipped   []string          `json:"skipped"`
	Failed    map[string]string `json:"failed"`
	Persisted bool              `json:"persisted"`
}

// ImageLocation tells the caller where to find cached image bytes. Exactly
// one of RedirectURL or Data is set.
type ImageLocation struct {
	RedirectURL string
	Data        []byte
	ContentType string
}
