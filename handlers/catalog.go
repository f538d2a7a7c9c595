// handlers/catalog.go - Catalog browse endpoints
package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tyriatrack/database"
	"tyriatrack/models"
	"tyriatrack/services"
)

// GetGroups returns every achievement group with its category summaries,
// ordered the way the game presents them.
func GetGroups(c *fiber.Ctx) error {
	db := database.GetDB()

	var groups []models.AchievementGroup
	if err := db.Order(`"order" ASC`).Find(&groups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load groups"})
	}

	var categories []models.AchievementCategory
	if err := db.Order(`"order" ASC`).Find(&categories).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load categories"})
	}

	byGroup := make(map[string][]models.AchievementCategory)
	for _, cat := range categories {
		byGroup[cat.GroupName] = append(byGroup[cat.GroupName], cat)
	}

	out := make([]fiber.Map, 0, len(groups))
	for _, g := range groups {
		out = append(out, fiber.Map{
			"id":          g.GW2ID,
			"name":        g.Name,
			"description": g.Description,
			"order":       g.Order,
			"categories":  byGroup[g.Name],
		})
	}

	return c.JSON(fiber.Map{"success": true, "groups": out})
}

// GetCategory returns one category and its achievements.
func GetCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid category id"})
	}

	db := database.GetDB()
	var category models.AchievementCategory
	if err := db.Where("gw2_id = ?", id).First(&category).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Category not found"})
	}

	var achievements []models.Achievement
	if err := db.Where("category_name = ?", category.Name).Order("name ASC").Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load achievements"})
	}
	achievements = filterPeriodic(achievements)

	return c.JSON(fiber.Map{
		"success":      true,
		"category":     category,
		"achievements": achievements,
	})
}

// GetAchievement returns one achievement with its graph neighborhood.
func GetAchievement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement id"})
	}

	db := database.GetDB()
	var row models.Achievement
	if err := db.Where("gw2_id = ?", id).First(&row).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Achievement not found"})
	}

	resp := fiber.Map{"success": true, "achievement": row}
	if svc := services.GetSnapshotService(); svc != nil {
		if snap := svc.Current(); snap != nil {
			resp["unlocks"] = snap.UnlockMap[id]
		}
	}
	return c.JSON(resp)
}

// SearchCatalog does a case-insensitive substring search over names and
// requirement text.
func SearchCatalog(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Query parameter q required"})
	}

	pattern := "%" + strings.ToLower(q) + "%"
	var rows []models.Achievement
	err := database.GetDB().
		Where("LOWER(name) LIKE ? OR LOWER(requirement) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(50).
		Find(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Search failed"})
	}

	return c.JSON(fiber.Map{"success": true, "results": filterPeriodic(rows), "query": q})
}

// filterPeriodic drops daily/weekly/monthly rotation achievements from
// catalog listings.
func filterPeriodic(rows []models.Achievement) []models.Achievement {
	out := rows[:0]
	for _, row := range rows {
		var flags []string
		if len(row.Flags) > 0 {
			_ = json.Unmarshal(row.Flags, &flags)
		}
		periodic := false
		for _, f := range flags {
			if f == "Daily" || f == "Weekly" || f == "Monthly" {
				periodic = true
				break
			}
		}
		if !periodic {
			out = append(out, row)
		}
	}
	return out
}
