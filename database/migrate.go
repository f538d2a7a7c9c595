// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"tyriatrack/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.AchievementGroup{},
		&models.AchievementCategory{},
		&models.Achievement{},
		&models.Item{},
		&models.Title{},
		&models.Preference{},
		&models.SyncRun{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover
func createIndexes() {
	db := GetDB()

	// Catalog lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_category ON achievements(category_name)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_group ON achievements(group_name)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_points ON achievements(point_total DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_categories_group ON achievement_categories(group_name)")
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_groups_order ON achievement_groups("order")`)

	// Sync history
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at DESC)")
}
