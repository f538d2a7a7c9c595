package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"tyriatrack/database"
	"tyriatrack/engine"
	"tyriatrack/models"
)

// Imports a GW2 achievement catalog dump (the JSON array served by
// /v2/achievements?ids=all, saved to disk) straight into the database.
// Useful for seeding a dev environment without hammering the live API.

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	jsonPath := "./data/achievements.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var achievements []engine.Achievement
	if err := json.Unmarshal(data, &achievements); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	fmt.Printf("Found %d achievements in %s\n\n", len(achievements), jsonPath)

	database.InitDB()
	db := database.GetDB()

	rows := make([]models.Achievement, 0, len(achievements))
	for _, a := range achievements {
		flags, _ := json.Marshal(a.Flags)
		tiers, _ := json.Marshal(a.Tiers)
		rewards, _ := json.Marshal(a.Rewards)
		prereqs, _ := json.Marshal(a.Prerequisites)
		rows = append(rows, models.Achievement{
			GW2ID:         a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Requirement:   a.Requirement,
			Type:          a.Type,
			Flags:         flags,
			Tiers:         tiers,
			Rewards:       rewards,
			Prerequisites: prereqs,
			PointTotal:    a.TotalPoints(),
		})
	}

	batchSize := 500
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := rows[i:end]
		if err := db.Create(&batch).Error; err != nil {
			log.Printf("Error inserting batch %d-%d: %v\n", i, end, err)
		} else {
			fmt.Printf("Inserted achievements %d-%d\n", i+1, end)
		}
	}

	fmt.Println("\n✓ Import completed successfully!")

	var count int64
	db.Model(&models.Achievement{}).Count(&count)
	fmt.Printf("✓ Total achievements in database: %d\n", count)
	fmt.Println("Note: category/group names are filled by the next API sync.")
}
