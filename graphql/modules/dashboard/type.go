// Package dashboard defines the GraphQL types for the severity dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// DashboardOverviewType represents the high-level metrics for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total_cves":    &graphql.Field{Type: graphql.Int},
		"total_fetches": &graphql.Field{Type: graphql.Int},
	},
})

// SeverityDistributionType represents the data for the pie/bar charts
var SeverityDistributionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SeverityDistribution",
	Fields: graphql.Fields{
		"critical": &graphql.Field{Type: graphql.Int},
		"high":     &graphql.Field{Type: graphql.Int},
		"medium":   &graphql.Field{Type: graphql.Int},
		"low":      &graphql.Field{Type: graphql.Int},
	},
})

// SeverityTrendType represents the daily severity breakdown of publications
var SeverityTrendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SeverityTrend",
	Fields: graphql.Fields{
		"date":     &graphql.Field{Type: graphql.String},
		"critical": &graphql.Field{Type: graphql.Int},
		"high":     &graphql.Field{Type: graphql.Int},
		"medium":   &graphql.Field{Type: graphql.Int},
		"low":      &graphql.Field{Type: graphql.Int},
		"total":    &graphql.Field{Type: graphql.Int},
	},
})
