// Package model - document and API types for the cvetrend backend
package model

import "time"

// StoredCVE is the document persisted in the "cves" collection. Raw carries
// the vulnerability record exactly as received from the NVD API; the flat
// fields are derived once at write time so list/search/trend queries never
// have to dig through the nested payload.
type StoredCVE struct {
	Key            string                 `json:"_key,omitempty"`
	CveID          string                 `json:"cve_id"`
	Description    string                 `json:"description,omitempty"`
	Published      string                 `json:"published,omitempty"`
	LastModified   string                 `json:"last_modified,omitempty"`
	SeverityRating string                 `json:"severity_rating"`
	CVSSBaseScore  float64                `json:"cvss_base_score"`
	CVSSVector     string                 `json:"cvss_vector,omitempty"`
	Source         string                 `json:"source"`
	ObjType        string                 `json:"objtype"` // "StoredCVE"
	Raw            map[string]interface{} `json:"raw"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// FetchLog records one bulk-fetch session in the "fetches" collection so
// operators can see what was pulled, when, and how each session ended.
type FetchLog struct {
	Key            string    `json:"_key,omitempty"`
	SessionID      string    `json:"session_id"`
	StartDate      string    `json:"start_date,omitempty"`
	EndDate        string    `json:"end_date,omitempty"`
	Keyword        string    `json:"keyword,omitempty"`
	CVEID          string    `json:"cve_id,omitempty"`
	Severity       string    `json:"severity,omitempty"`
	MaxResults     int       `json:"max_results,omitempty"`
	TotalAvailable int       `json:"total_available"`
	Target         int       `json:"target"`
	Fetched        int       `json:"fetched"`
	Upserted       int       `json:"upserted"`
	State          string    `json:"state"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	ObjType        string    `json:"objtype"` // "FetchLog"
}
