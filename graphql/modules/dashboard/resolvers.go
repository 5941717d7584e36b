// Package dashboard implements the resolvers for the severity dashboard.
package dashboard

import (
	"context"

	"github.com/vulnwatch/cvetrend-backend/database"
)

// ResolveOverview returns the top-card counters
func ResolveOverview(db database.DBConnection) (map[string]interface{}, error) {
	ctx := context.Background()

	totalCVEs, err := database.TotalCVEs(ctx, db)
	if err != nil {
		return nil, err
	}

	logs, err := database.ListFetchLogs(ctx, db, 500)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total_cves":    totalCVEs,
		"total_fetches": len(logs),
	}, nil
}

// ResolveSeverityDistribution aggregates the stored corpus by rating
func ResolveSeverityDistribution(db database.DBConnection) (*database.SeverityCounts, error) {
	return database.CountBySeverity(context.Background(), db)
}

// ResolveSeverityTrend returns the per-day severity breakdown over the
// trailing window
func ResolveSeverityTrend(db database.DBConnection, days int) ([]database.SeverityTrendPoint, error) {
	return database.SeverityTrend(context.Background(), db, days)
}
