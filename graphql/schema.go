// Package gqlschema assembles the root GraphQL schema from the module query fields.
package gqlschema

import (
	"github.com/graphql-go/graphql"
	"github.com/vulnwatch/cvetrend-backend/database"
	"github.com/vulnwatch/cvetrend-backend/graphql/modules/dashboard"
)

var db database.DBConnection

// InitDB stores the database connection used by the resolvers
func InitDB(conn database.DBConnection) {
	db = conn
}

// CreateSchema builds the root query schema
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}

	for name, field := range dashboard.GetQueryFields(db) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
