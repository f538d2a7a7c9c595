// services/snapshot.go - Catalog snapshot loader
package services

import (
	"fmt"
	"log"
	"sync"

	"tyriatrack/database"
	"tyriatrack/engine"
	"tyriatrack/models"
)

// SnapshotService loads the cached catalog out of the database into an
// immutable engine.Snapshot. The snapshot is rebuilt after every sync and
// served to every request until the next rebuild; requests never see a
// half-updated catalog.
type SnapshotService struct {
	mu       sync.RWMutex
	current  *engine.Snapshot
	revision uint64
}

var snapshotService *SnapshotService

// InitSnapshotService initializes the singleton and attempts a first load.
func InitSnapshotService() {
	snapshotService = &SnapshotService{}
	if err := snapshotService.Reload(); err != nil {
		log.Printf("Initial snapshot load failed (catalog empty until first sync): %v", err)
	}
}

// GetSnapshotService returns the initialized service.
func GetSnapshotService() *SnapshotService {
	return snapshotService
}

// Current returns the latest snapshot, or nil before the first successful
// load.
func (s *SnapshotService) Current() *engine.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload rebuilds the snapshot from the database.
func (s *SnapshotService) Reload() error {
	db := database.GetDB()

	var rows []models.Achievement
	if err := db.Find(&rows).Error; err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	achievements := make([]engine.Achievement, 0, len(rows))
	categories := make(map[int]string, len(rows))
	skipped := 0
	for _, row := range rows {
		a, err := row.ToEngine()
		if err != nil {
			skipped++
			continue
		}
		achievements = append(achievements, a)
		if row.CategoryName != "" {
			categories[a.ID] = row.CategoryName
		}
	}
	if skipped > 0 {
		log.Printf("Snapshot: skipped %d achievements with malformed payload columns", skipped)
	}

	hydrateRewards(achievements)

	var cats []models.AchievementCategory
	if err := db.Find(&cats).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	groups := make(map[string]string, len(cats))
	for _, c := range cats {
		groups[c.Name] = c.GroupName
	}

	s.mu.Lock()
	s.revision++
	s.current = engine.NewSnapshot(achievements, categories, groups, s.revision)
	rev := s.revision
	s.mu.Unlock()

	log.Printf("✅ Snapshot rebuilt: %d achievements (revision %d)", len(achievements), rev)
	return nil
}

// hydrateRewards attaches stored item and title records to reward entries.
// Rewards whose referenced entity has not been fetched yet stay unresolved;
// the engine tolerates that.
func hydrateRewards(achievements []engine.Achievement) {
	db := database.GetDB()

	itemIDs := make(map[int]bool)
	titleIDs := make(map[int]bool)
	for _, a := range achievements {
		for _, r := range a.Rewards {
			switch r.Type {
			case engine.RewardItem:
				itemIDs[r.ID] = true
			case engine.RewardTitle:
				titleIDs[r.ID] = true
			}
		}
	}
	if len(itemIDs) == 0 && len(titleIDs) == 0 {
		return
	}

	items := make(map[int]*engine.ItemInfo)
	var itemRows []models.Item
	if err := db.Where("gw2_id IN ?", keys(itemIDs)).Find(&itemRows).Error; err == nil {
		for _, row := range itemRows {
			items[row.GW2ID] = &engine.ItemInfo{
				ID:          row.GW2ID,
				Name:        row.Name,
				Rarity:      row.Rarity,
				VendorValue: row.VendorValue,
				Type:        row.Type,
				BagSize:     row.BagSize,
			}
		}
	}

	titles := make(map[int]*engine.TitleInfo)
	var titleRows []models.Title
	if err := db.Where("gw2_id IN ?", keys(titleIDs)).Find(&titleRows).Error; err == nil {
		for _, row := range titleRows {
			titles[row.GW2ID] = &engine.TitleInfo{ID: row.GW2ID, Name: row.Name}
		}
	}

	for i := range achievements {
		for j := range achievements[i].Rewards {
			r := &achievements[i].Rewards[j]
			switch r.Type {
			case engine.RewardItem:
				r.Item = items[r.ID]
			case engine.RewardTitle:
				r.Title = titles[r.ID]
			}
		}
	}
}

func keys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
