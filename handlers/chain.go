// handlers/chain.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tyriatrack/engine"
)

// GetChain resolves the prerequisite/unlock chain of an achievement with
// per-member statuses for the caller's account.
func GetChain(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement id"})
	}

	snap, err := currentSnapshot(c)
	if err != nil || snap == nil {
		return err
	}

	progress, access, err := userState(c)
	if err != nil {
		return err
	}

	chain, ok := engine.ResolveChain(id, snap, progress, access)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Achievement not found"})
	}

	return c.JSON(fiber.Map{"success": true, "chain": chain})
}
