package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vulnwatch/cvetrend-backend/model"
)

func TestQueryFromRequestPassthrough(t *testing.T) {
	q := queryFromRequest(model.FetchRequest{
		StartDate:  "2024-01-01",
		EndDate:    "2024-02-01",
		Keyword:    "openssl",
		Severity:   "HIGH",
		PageSize:   500,
		MaxResults: 1000,
	})

	assert.Equal(t, "2024-01-01", q.StartDate)
	assert.Equal(t, "2024-02-01", q.EndDate)
	assert.Equal(t, "openssl", q.Keyword)
	assert.Equal(t, "HIGH", q.Severity)
	assert.Equal(t, 500, q.ResultsPerPage)
	assert.Equal(t, 1000, q.MaxResults)
}

func TestQueryFromRequestDaysWindow(t *testing.T) {
	q := queryFromRequest(model.FetchRequest{Days: 7})

	assert.Equal(t, time.Now().AddDate(0, 0, -7).Format("2006-01-02"), q.StartDate)
	assert.Equal(t, time.Now().Format("2006-01-02"), q.EndDate)
}

func TestQueryFromRequestExplicitDatesWinOverDays(t *testing.T) {
	q := queryFromRequest(model.FetchRequest{Days: 30, StartDate: "2024-01-01", EndDate: "2024-01-31"})

	assert.Equal(t, "2024-01-01", q.StartDate)
	assert.Equal(t, "2024-01-31", q.EndDate)
}
