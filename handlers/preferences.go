// handlers/preferences.go - Client preference storage
package handlers

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tyriatrack/database"
	"tyriatrack/models"
)

type PreferencesRequest struct {
	ClientID    string `json:"client_id"`
	APIKey      string `json:"api_key"`
	Starred     []int  `json:"starred"`
	CompactView bool   `json:"compact_view"`
}

const maxStarred = 200

// GetPreferences returns the stored preferences for a client id, or the
// defaults when the client has never saved any.
func GetPreferences(c *fiber.Ctx) error {
	clientID := strings.TrimSpace(c.Query("client_id"))
	if clientID == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "client_id query parameter required",
		})
	}

	var pref models.Preference
	err := database.GetDB().Where("client_id = ?", clientID).First(&pref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(fiber.Map{
				"success":     true,
				"preferences": models.Preference{ClientID: clientID},
			})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load preferences"})
	}

	return c.JSON(fiber.Map{"success": true, "preferences": pref})
}

// SavePreferences upserts a client's preferences.
func SavePreferences(c *fiber.Ctx) error {
	var req PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "client_id required",
		})
	}
	if len(req.Starred) > maxStarred {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Too many starred achievements",
		})
	}

	starredJSON, err := json.Marshal(req.Starred)
	if err != nil {
		log.Printf("Error marshaling starred ids: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save preferences"})
	}

	db := database.GetDB()
	var pref models.Preference
	err = db.Where("client_id = ?", req.ClientID).First(&pref).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		pref = models.Preference{
			ClientID:    req.ClientID,
			APIKey:      req.APIKey,
			Starred:     starredJSON,
			CompactView: req.CompactView,
		}
		if err := db.Create(&pref).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save preferences"})
		}
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save preferences"})
	default:
		updates := map[string]interface{}{
			"api_key":      req.APIKey,
			"starred":      string(starredJSON),
			"compact_view": req.CompactView,
		}
		if err := db.Model(&pref).Updates(updates).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save preferences"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "preferences": pref})
}
