// handlers/handlers.go - Shared handler state
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tyriatrack/engine"
	"tyriatrack/gw2"
	"tyriatrack/middleware"
	"tyriatrack/services"
)

var gw2Client *gw2.Client

// Init wires the handlers to the GW2 API client. Call once at startup.
func Init(client *gw2.Client) {
	gw2Client = client
}

// currentSnapshot returns the active catalog snapshot or replies 503 when
// the catalog has not been synced yet.
func currentSnapshot(c *fiber.Ctx) (*engine.Snapshot, error) {
	svc := services.GetSnapshotService()
	if svc == nil || svc.Current() == nil {
		return nil, c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Catalog not loaded yet. Trigger a sync and retry.",
		})
	}
	return svc.Current(), nil
}

// userState fetches the caller's progress and expansion access from the GW2
// API with the key extracted by the middleware. Both are replaced wholesale
// per request; nothing is cached across users.
func userState(c *fiber.Ctx) (engine.ProgressMap, engine.AccessSet, error) {
	key := middleware.GetAPIKey(c)

	progress, err := gw2Client.AccountAchievements(c.Context(), key)
	if err != nil {
		return nil, nil, upstreamError(c, err)
	}
	access, err := gw2Client.AccountAccess(c.Context(), key)
	if err != nil {
		return nil, nil, upstreamError(c, err)
	}
	return progress, access, nil
}

func upstreamError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	if apiErr, ok := err.(*gw2.APIError); ok {
		switch apiErr.Status {
		case fiber.StatusUnauthorized, fiber.StatusForbidden:
			status = fiber.StatusUnauthorized
		case fiber.StatusTooManyRequests:
			status = fiber.StatusTooManyRequests
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   "GW2 API request failed: " + err.Error(),
	})
}
