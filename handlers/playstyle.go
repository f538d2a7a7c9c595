// handlers/playstyle.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tyriatrack/engine"
)

// GetPlaystyle classifies the caller's completion history into a playstyle
// label plus the underlying bucket totals.
func GetPlaystyle(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c)
	if err != nil || snap == nil {
		return err
	}

	progress, _, err := userState(c)
	if err != nil {
		return err
	}

	label, vector := engine.Classify(progress, snap)
	return c.JSON(fiber.Map{
		"success":   true,
		"playstyle": label,
		"scores":    vector,
	})
}
