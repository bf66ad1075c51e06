package domain

import "time"

// Page is a stored, pre-ingested document. Pages are read-only in this
// service; an external ingestion process owns writes.
type Page struct {
	ID          int64      `json:"id"`
	Language    string     `json:"language"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Content     string     `json:"content"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}
