package services

import (
	"log"
	"time"
	"tyriatrack/database"
	"tyriatrack/models"
)

// CleanupService prunes old sync run records and marks runs that were
// interrupted by a crash as failed.
type CleanupService struct {
	stop chan struct{}
}

var cleanupService *CleanupService

const (
	syncRunRetention = 30 * 24 * time.Hour
	staleRunAge      = time.Hour
	cleanupInterval  = 6 * time.Hour
)

// InitCleanupService initializes the singleton cleanup service and starts
// its background loop.
func InitCleanupService() {
	cleanupService = &CleanupService{stop: make(chan struct{})}
	cleanupService.Start()
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start launches the periodic cleanup loop.
func (s *CleanupService) Start() {
	go func() {
		// Run once at boot to fail runs orphaned by a previous crash.
		s.CleanupSyncRuns()

		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanupSyncRuns()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop stops the cleanup loop.
func (s *CleanupService) Stop() {
	close(s.stop)
}

// CleanupSyncRuns fails stale running records and deletes runs older than
// the retention window.
func (s *CleanupService) CleanupSyncRuns() {
	db := database.GetDB()
	if db == nil {
		return
	}

	now := time.Now().UTC()

	// A run still "running" an hour after it started died with its process.
	staleBefore := now.Add(-staleRunAge)
	res := db.Model(&models.SyncRun{}).
		Where("status = ? AND started_at < ?", models.SyncRunning, staleBefore).
		Updates(map[string]interface{}{
			"status":   models.SyncFailed,
			"ended_at": now,
			"error":    "interrupted",
		})
	if res.Error != nil {
		log.Printf("Error failing stale sync runs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("🧹 Marked %d stale sync runs as failed", res.RowsAffected)
	}

	cutoff := now.Add(-syncRunRetention)
	res = db.Where("started_at < ?", cutoff).Delete(&models.SyncRun{})
	if res.Error != nil {
		log.Printf("Error pruning old sync runs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("✅ Pruned %d sync runs older than %s", res.RowsAffected, syncRunRetention)
	}
}
