// handlers/sync.go - Manual sync trigger and status
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tyriatrack/services"

	"gorm.io/gorm"
)

// TriggerSync starts a catalog sync run in the background.
func TriggerSync(c *fiber.Ctx) error {
	run, err := services.GetSyncService().Trigger()
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A sync is already running",
			})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to start sync"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "run": run})
}

// GetSyncStatus returns the most recent sync run.
func GetSyncStatus(c *fiber.Ctx) error {
	run, err := services.GetSyncService().LastRun()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "No sync has run yet"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load sync status"})
	}

	return c.JSON(fiber.Map{"success": true, "run": run})
}
