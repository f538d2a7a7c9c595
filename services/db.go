// services/db.go - Shared upsert helpers for the sync pipeline
package services

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsert inserts rows in batches, updating the listed columns when the
// conflict column already exists. Columns not listed keep their stored
// values.
func upsert[T any](db *gorm.DB, conflictCol string, rows []T, updateCols ...string) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: conflictCol}},
		DoUpdates: clause.AssignmentColumns(updateCols),
	}).CreateInBatches(rows, upsertBatchSize).Error
}

// missingIDs returns the wanted ids that have no stored row yet, in
// ascending order.
func missingIDs(db *gorm.DB, model interface{}, wanted map[int]bool) []int {
	if len(wanted) == 0 {
		return nil
	}
	var existing []int
	db.Model(model).Where("gw2_id IN ?", keys(wanted)).Pluck("gw2_id", &existing)

	have := make(map[int]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}
	var missing []int
	for id := range wanted {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)
	return missing
}
