// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
	"github.com/vulnwatch/cvetrend-backend/database"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		// Section 1: Top Cards (Overview)
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(db)
			},
		},
		// Section 2: Charts (Severity)
		"dashboardSeverity": &graphql.Field{
			Type: SeverityDistributionType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveSeverityDistribution(db)
			},
		},
		// Section 3: Trend Line (Publications by day and rating)
		"dashboardSeverityTrend": &graphql.Field{
			Type: graphql.NewList(SeverityTrendType),
			Args: graphql.FieldConfigArgument{
				"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 90},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				days := p.Args["days"].(int)
				return ResolveSeverityTrend(db, days)
			},
		},
	}
}
