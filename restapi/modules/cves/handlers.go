// Package cves implements the read-only REST API over stored CVE documents.
package cves

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/vulnwatch/cvetrend-backend/database"
	"github.com/vulnwatch/cvetrend-backend/model"
)

// ListCVEs handles GET requests for a filtered, paginated CVE listing
func ListCVEs(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		offset := c.QueryInt("offset", 0)
		filter := database.CVEFilter{
			Severity:  c.Query("severity"),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
		}

		results, total, err := database.ListCVEs(context.Background(), db, filter, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query CVEs: " + err.Error(),
			})
		}

		return c.JSON(model.CVEListResponse{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			Results: results,
		})
	}
}

// GetCVE handles GET requests for a single CVE by id
func GetCVE(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cveID := c.Params("cve_id")
		if cveID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "cve_id is required",
			})
		}

		doc, err := database.GetCVEByID(context.Background(), db, cveID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query CVE: " + err.Error(),
			})
		}
		if doc == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "CVE not found: " + cveID,
			})
		}

		return c.JSON(doc)
	}
}

// SearchCVEs handles GET requests for keyword search over descriptions
func SearchCVEs(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keyword := c.Query("keyword")
		if keyword == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "keyword is required",
			})
		}

		limit := c.QueryInt("limit", 100)
		offset := c.QueryInt("offset", 0)
		filter := database.CVEFilter{
			Keyword:  keyword,
			Severity: c.Query("severity"),
		}

		results, total, err := database.ListCVEs(context.Background(), db, filter, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Search failed: " + err.Error(),
			})
		}

		return c.JSON(model.CVEListResponse{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			Results: results,
		})
	}
}
