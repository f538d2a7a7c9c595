// middleware/apikey.go - GW2 API key extraction
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// There is no local account system: the GW2 API key the client supplies is
// an opaque bearer token passed through to the upstream API verbatim. This
// middleware only extracts it; validity is upstream's call.

const apiKeyLocal = "apiKey"

// ExtractAPIKey reads the key from the Authorization header or the api_key
// query parameter, whichever is present.
func ExtractAPIKey(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("api_key")
}

// RequireAPIKey rejects requests that carry no API key and stores the key in
// locals for handlers.
func RequireAPIKey(c *fiber.Ctx) error {
	key := ExtractAPIKey(c)
	if key == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "GW2 API key required (Authorization: Bearer <key> or ?api_key=)",
		})
	}
	c.Locals(apiKeyLocal, key)
	return c.Next()
}

// GetAPIKey returns the key stored by RequireAPIKey.
func GetAPIKey(c *fiber.Ctx) string {
	if key, ok := c.Locals(apiKeyLocal).(string); ok {
		return key
	}
	return ""
}
