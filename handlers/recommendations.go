// handlers/recommendations.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tyriatrack/engine"
)

// GetRecommendations returns the flavor-filtered, ranked top candidates for
// the caller's account.
func GetRecommendations(c *fiber.Ctx) error {
	flavor := c.Query("flavor", string(engine.FlavorUnrestricted))
	if !engine.ValidFlavor(flavor) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown flavor: " + flavor,
		})
	}

	snap, err := currentSnapshot(c)
	if err != nil || snap == nil {
		return err
	}

	progress, access, err := userState(c)
	if err != nil {
		return err
	}

	recs := engine.Recommend(snap, progress, access, engine.Flavor(flavor))
	return c.JSON(fiber.Map{
		"success":         true,
		"flavor":          flavor,
		"recommendations": recs,
	})
}

// GetAccountAchievements proxies the caller's raw progress list.
func GetAccountAchievements(c *fiber.Ctx) error {
	progress, access, err := userState(c)
	if err != nil {
		return err
	}

	entries := make([]engine.Progress, 0, len(progress))
	for _, p := range progress {
		entries = append(entries, p)
	}
	tokens := make([]string, 0, len(access))
	for token := range access {
		tokens = append(tokens, token)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": entries,
		"access":       tokens,
	})
}
