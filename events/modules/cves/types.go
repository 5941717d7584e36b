// Package cves defines the event contracts emitted after bulk-fetch sessions.
package cves

import "time"

// FetchCompletedEvent is published after every bulk-fetch session, successful
// or aborted, so downstream analysis pipelines can react to fresh data.
type FetchCompletedEvent struct {
	EventType     string    `json:"event_type"` // "cve.fetch.completed"
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	SessionID string `json:"session_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
	State     string `json:"state"`
	Fetched   int    `json:"fetched"`
	Upserted  int    `json:"upserted"`
}
