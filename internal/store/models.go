package store

import "time"

// Insight statuses. Error text is cached like any other generation result,
// but the status column keeps it distinguishable from real insights.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Insight is a cached generation result keyed by dataset fingerprint.
// Immutable apart from full overwrite on re-generation.
type Insight struct {
	CacheKey  string    `json:"cache_key"`
	Insights  string    `json:"insights"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is an audit record of a successfully processed file upload.
type Upload struct {
	ID         string    `json:"id"` // UUID
	Filename   string    `json:"filename"`
	CacheKey   string    `json:"cache_key"`
	UploadedAt time.Time `json:"uploaded_at"`
}
