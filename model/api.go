// Package model - API types for requests/responses
package model

// FetchRequest is the body for POST /api/v1/fetch
type FetchRequest struct {
	StartDate  string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Days       int    `json:"days,omitempty"`       // alternative to explicit dates
	CVEID      string `json:"cve_id,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
	Severity   string `json:"severity,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// FetchResponse returns the result of a fetch trigger
type FetchResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	State          string `json:"state,omitempty"`
	TotalAvailable int    `json:"total_available"`
	Fetched        int    `json:"fetched"`
	Upserted       int    `json:"upserted"`
}

// ExportRequest is the body for POST /api/v1/fetch/export. The embedded
// fetch parameters describe what to pull; the response cache makes a repeat
// export of a recent window free.
type ExportRequest struct {
	FetchRequest
	Path string `json:"path"`
}

// ImportRequest is the body for POST /api/v1/fetch/import
type ImportRequest struct {
	Path string `json:"path"`
}

// CVEListResponse is the paged list shape served by the CVE read API
type CVEListResponse struct {
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	Results []StoredCVE `json:"results"`
}
