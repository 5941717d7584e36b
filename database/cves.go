// Package database - CVE document storage and query operations
package database

import (
	"context"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/vulnwatch/cvetrend-backend/model"
)

// SeverityCounts holds per-rating document counts for the dashboard
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// SeverityTrendPoint is the per-day severity breakdown for trend charts
type SeverityTrendPoint struct {
	Date     string `json:"date"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
	Medium   int    `json:"medium"`
	Low      int    `json:"low"`
	Total    int    `json:"total"`
}

// UpsertCVEs writes the enriched documents keyed by CVE id. Existing
// documents are updated in place so re-fetching the same window is idempotent.
func UpsertCVEs(ctx context.Context, db DBConnection, docs []model.StoredCVE) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	query := `
		FOR doc IN @docs
			UPSERT { cve_id: doc.cve_id }
			INSERT doc
			UPDATE MERGE(doc, { created_at: OLD.created_at })
			IN cves
			RETURN NEW._key
	`
	bindVars := map[string]interface{}{"docs": docs}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return 0, fmt.Errorf("upsert cves: %w", err)
	}
	defer cursor.Close()

	count := 0
	for cursor.HasMore() {
		var key string
		if _, err := cursor.ReadDocument(ctx, &key); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// GetCVEByID returns a single stored CVE, or nil when unknown
func GetCVEByID(ctx context.Context, db DBConnection, cveID string) (*model.StoredCVE, error) {
	query := `
		FOR c IN cves
			FILTER c.cve_id == @id
			LIMIT 1
			RETURN c
	`
	bindVars := map[string]interface{}{"id": cveID}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var doc model.StoredCVE
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CVEFilter narrows ListCVEs results
type CVEFilter struct {
	Severity  string
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
	Keyword   string
}

// ListCVEs returns a page of stored CVEs ordered by publication date
// descending, plus the total matching count for pagination.
func ListCVEs(ctx context.Context, db DBConnection, filter CVEFilter, limit, offset int) ([]model.StoredCVE, int, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		LET matched = (
			FOR c IN cves
				FILTER @severity == "" OR UPPER(c.severity_rating) == UPPER(@severity)
				FILTER @start == "" OR c.published >= @start
				FILTER @end == "" OR c.published <= CONCAT(@end, "T23:59:59.999")
				FILTER @keyword == "" OR CONTAINS(LOWER(c.description), LOWER(@keyword))
				RETURN c
		)
		RETURN {
			total: LENGTH(matched),
			results: (
				FOR c IN matched
					SORT c.published DESC
					LIMIT @offset, @limit
					RETURN c
			)
		}
	`
	bindVars := map[string]interface{}{
		"severity": filter.Severity,
		"start":    filter.StartDate,
		"end":      filter.EndDate,
		"keyword":  filter.Keyword,
		"limit":    limit,
		"offset":   offset,
	}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close()

	var page struct {
		Total   int               `json:"total"`
		Results []model.StoredCVE `json:"results"`
	}
	if _, err := cursor.ReadDocument(ctx, &page); err != nil {
		return nil, 0, err
	}
	return page.Results, page.Total, nil
}

// TotalCVEs counts the stored corpus
func TotalCVEs(ctx context.Context, db DBConnection) (int, error) {
	query := `RETURN LENGTH(cves)`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	var total int
	if _, err := cursor.ReadDocument(ctx, &total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountBySeverity aggregates the corpus into the four NVD ratings
func CountBySeverity(ctx context.Context, db DBConnection) (*SeverityCounts, error) {
	query := `
		RETURN {
			critical: LENGTH(FOR c IN cves FILTER c.severity_rating == "CRITICAL" RETURN 1),
			high:     LENGTH(FOR c IN cves FILTER c.severity_rating == "HIGH" RETURN 1),
			medium:   LENGTH(FOR c IN cves FILTER c.severity_rating == "MEDIUM" RETURN 1),
			low:      LENGTH(FOR c IN cves FILTER c.severity_rating == "LOW" RETURN 1)
		}
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var counts SeverityCounts
	if _, err := cursor.ReadDocument(ctx, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// SeverityTrend groups publications by day over the trailing window
func SeverityTrend(ctx context.Context, db DBConnection, days int) ([]SeverityTrendPoint, error) {
	if days <= 0 {
		days = 90
	}

	query := `
		LET cutoff = DATE_SUBTRACT(DATE_NOW(), @days, "day")
		FOR c IN cves
			FILTER c.published != "" AND DATE_TIMESTAMP(c.published) >= cutoff
			COLLECT day = LEFT(c.published, 10)
			AGGREGATE
				critical = SUM(c.severity_rating == "CRITICAL" ? 1 : 0),
				high     = SUM(c.severity_rating == "HIGH" ? 1 : 0),
				medium   = SUM(c.severity_rating == "MEDIUM" ? 1 : 0),
				low      = SUM(c.severity_rating == "LOW" ? 1 : 0),
				total    = SUM(1)
			SORT day ASC
			RETURN { date: day, critical: critical, high: high, medium: medium, low: low, total: total }
	`
	bindVars := map[string]interface{}{"days": days}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var trend []SeverityTrendPoint
	for cursor.HasMore() {
		var point SeverityTrendPoint
		if _, err := cursor.ReadDocument(ctx, &point); err != nil {
			return nil, err
		}
		trend = append(trend, point)
	}
	return trend, nil
}

// SaveFetchLog appends one fetch session record
func SaveFetchLog(ctx context.Context, db DBConnection, log model.FetchLog) error {
	_, err := db.Collections["fetches"].CreateDocument(ctx, log)
	if err != nil {
		return fmt.Errorf("save fetch log: %w", err)
	}
	return nil
}

// ListFetchLogs returns the most recent fetch sessions
func ListFetchLogs(ctx context.Context, db DBConnection, limit int) ([]model.FetchLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		FOR f IN fetches
			SORT f.started_at DESC
			LIMIT @limit
			RETURN f
	`
	bindVars := map[string]interface{}{"limit": limit}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var logs []model.FetchLog
	for cursor.HasMore() {
		var entry model.FetchLog
		if _, err := cursor.ReadDocument(ctx, &entry); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
