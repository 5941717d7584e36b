// Package fetch implements the REST API handlers that trigger bulk-fetch,
// export and import operations.
package fetch

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vulnwatch/cvetrend-backend/database"
	"github.com/vulnwatch/cvetrend-backend/internal/nvd"
	"github.com/vulnwatch/cvetrend-backend/internal/services"
	"github.com/vulnwatch/cvetrend-backend/model"
)

// PostFetch handles POST requests that pull a window of CVEs from the NVD API
// into storage. A partial failure still answers with what was stored so the
// operator can retry with a narrower date range.
func PostFetch(svc *services.FetchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.FetchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		log, err := svc.Fetch(context.Background(), req)

		resp := model.FetchResponse{
			Success:        err == nil,
			SessionID:      log.SessionID,
			State:          log.State,
			TotalAvailable: log.TotalAvailable,
			Fetched:        log.Fetched,
			Upserted:       log.Upserted,
		}

		if err != nil {
			resp.Message = err.Error()
			status := fiber.StatusBadGateway
			if errors.Is(err, nvd.ErrRateLimited) {
				status = fiber.StatusTooManyRequests
				resp.Message = "NVD rate limit exceeded; back off or configure an API key"
			}
			return c.Status(status).JSON(resp)
		}

		resp.Message = "fetch completed"
		return c.JSON(resp)
	}
}

// PostExport handles POST requests that write a fetched collection to a file
func PostExport(svc *services.FetchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ExportRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Path == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "path is required",
			})
		}

		log, err := svc.Export(context.Background(), req)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"message": "Export failed: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"path":    req.Path,
			"count":   log.Fetched,
		})
	}
}

// PostImport handles POST requests that reload a previously exported file
// into storage without spending API quota.
func PostImport(svc *services.FetchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ImportRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Path == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "path is required",
			})
		}

		upserted, err := svc.Import(context.Background(), req.Path)
		if err != nil {
			status := fiber.StatusInternalServerError
			var format *nvd.FormatError
			if errors.As(err, &format) {
				status = fiber.StatusUnprocessableEntity
			}
			return c.Status(status).JSON(fiber.Map{
				"success": false,
				"message": "Import failed: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"path":     req.Path,
			"upserted": upserted,
		})
	}
}

// ListSessions handles GET requests for recent fetch session logs
func ListSessions(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := database.ListFetchLogs(context.Background(), db, c.QueryInt("limit", 50))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query fetch sessions: " + err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "sessions": logs})
	}
}
