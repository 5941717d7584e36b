// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/vulnwatch/cvetrend-backend/database"
	"github.com/vulnwatch/cvetrend-backend/internal/services"
	"github.com/vulnwatch/cvetrend-backend/restapi/modules/cves"
	"github.com/vulnwatch/cvetrend-backend/restapi/modules/fetch"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, db database.DBConnection, svc *services.FetchService, schema graphql.Schema) {

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// CVE read API
	api.Get("/cves", cves.ListCVEs(db))
	api.Get("/cves/:cve_id", cves.GetCVE(db))
	api.Get("/search", cves.SearchCVEs(db))

	// Fetch operations
	api.Post("/fetch", fetch.PostFetch(svc))
	api.Post("/fetch/export", fetch.PostExport(svc))
	api.Post("/fetch/import", fetch.PostImport(svc))
	api.Get("/fetch/sessions", fetch.ListSessions(db))

	log.Println("API routes initialized successfully")
}
