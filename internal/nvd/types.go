package nvd

import "strconv"

// Record is one vulnerability entry exactly as received from the API. The
// client treats it as an opaque blob; only the optional severity post-filter
// and the storage layer's identity lookup reach into it.
type Record map[string]interface{}

// ID returns the CVE identifier of the record, or "" when the shape is not
// the expected {"cve": {"id": ...}} envelope.
func (r Record) ID() string {
	id, _ := NestedString(map[string]interface{}(r), "cve", "id")
	return id
}

// Response is one page of the paginated CVE API result set.
type Response struct {
	ResultsPerPage  int      `json:"resultsPerPage"`
	StartIndex      int      `json:"startIndex"`
	TotalResults    int      `json:"totalResults"`
	Format          string   `json:"format,omitempty"`
	Version         string   `json:"version,omitempty"`
	Timestamp       string   `json:"timestamp,omitempty"`
	Vulnerabilities []Record `json:"vulnerabilities"`
}

// Query describes one bulk-fetch invocation.
type Query struct {
	StartDate      string `json:"start_date,omitempty"` // YYYY-MM-DD, inclusive
	EndDate        string `json:"end_date,omitempty"`   // YYYY-MM-DD, inclusive
	CVEID          string `json:"cve_id,omitempty"`
	Keyword        string `json:"keyword,omitempty"`
	Severity       string `json:"severity,omitempty"` // post-filter, LOW/MEDIUM/HIGH/CRITICAL
	ResultsPerPage int    `json:"results_per_page,omitempty"`
	MaxResults     int    `json:"max_results,omitempty"` // 0 = fetch everything

	// Progress, when set, is called after every accumulated page with the
	// running record count against the fetch target. Reporting only.
	Progress func(fetched, target int) `json:"-"`
}

// params builds the base query string map sent to the API. Dates are widened
// to inclusive start-of-day / end-of-day timestamps.
func (q Query) params() map[string]string {
	pageSize := q.ResultsPerPage
	if pageSize <= 0 || pageSize > MaxResultsPerPage {
		pageSize = MaxResultsPerPage
	}

	p := map[string]string{
		"resultsPerPage": strconv.Itoa(pageSize),
	}
	if q.StartDate != "" {
		p["pubStartDate"] = q.StartDate + "T00:00:00.000"
	}
	if q.EndDate != "" {
		p["pubEndDate"] = q.EndDate + "T23:59:59.999"
	}
	if q.CVEID != "" {
		p["cveId"] = q.CVEID
	}
	if q.Keyword != "" {
		p["keywordSearch"] = q.Keyword
	}
	return p
}

// TerminalState records how a fetch session ended.
type TerminalState string

const (
	// StateCompleted means the declared target was reached.
	StateCompleted TerminalState = "completed"
	// StateExhausted means the server returned an empty page before the
	// declared total; the partial set is kept and no error is raised.
	StateExhausted TerminalState = "exhausted"
	// StateAborted means a page request failed; records accumulated before
	// the failure are returned alongside the error.
	StateAborted TerminalState = "aborted"
)

// FetchResult is the outcome of one fetch session. Records holds everything
// accumulated up to the terminal state, including on abort.
type FetchResult struct {
	Records        []Record      `json:"records"`
	TotalAvailable int           `json:"total_available"`
	Target         int           `json:"target"`
	State          TerminalState `json:"state"`
}
