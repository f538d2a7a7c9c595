// models/sync_run.go - Catalog sync bookkeeping
package models

import "time"

// Sync run states.
const (
	SyncRunning   = "running"
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)

// SyncRun records one catalog sync attempt, manual or scheduled.
type SyncRun struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Status    string     `json:"status" gorm:"size:20;index"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Groups       int `json:"groups" gorm:"default:0"`
	Categories   int `json:"categories" gorm:"default:0"`
	Achievements int `json:"achievements" gorm:"default:0"`
	Items        int `json:"items" gorm:"default:0"`
	Titles       int `json:"titles" gorm:"default:0"`

	Error string `json:"error,omitempty" gorm:"type:text"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
