// services/sync.go - Catalog sync pipeline
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"tyriatrack/database"
	"tyriatrack/engine"
	"tyriatrack/gw2"
	"tyriatrack/models"
)

// ErrSyncInProgress is returned when a trigger arrives while a run is
// already active.
var ErrSyncInProgress = errors.New("catalog sync already in progress")

const upsertBatchSize = 500

// SyncService pulls the achievement catalog from the GW2 API and upserts it
// into the local store. One run at a time; a periodic ticker triggers
// resyncs and a handler exposes a manual trigger.
type SyncService struct {
	client   *gw2.Client
	hub      *SyncEventHub
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

var syncService *SyncService

// InitSyncService initializes the singleton sync service.
func InitSyncService(client *gw2.Client, hub *SyncEventHub, interval time.Duration) {
	syncService = &SyncService{
		client:   client,
		hub:      hub,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// GetSyncService returns the initialized sync service.
func GetSyncService() *SyncService {
	return syncService
}

// Start launches the periodic resync loop when an interval is configured.
func (s *SyncService) Start() {
	if s.interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if _, err := s.Trigger(); err != nil && !errors.Is(err, ErrSyncInProgress) {
					log.Printf("Scheduled sync trigger failed: %v", err)
				}
			}
		}
	}()
	log.Printf("🔁 Catalog resync scheduled every %s", s.interval)
}

// Stop ends the periodic loop.
func (s *SyncService) Stop() {
	close(s.stop)
}

// Trigger starts a sync run in the background and returns its record
// immediately. Returns ErrSyncInProgress while a run is active.
func (s *SyncService) Trigger() (*models.SyncRun, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()

	run := &models.SyncRun{
		ID:        uuid.NewString(),
		Status:    models.SyncRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := database.GetDB().Create(run).Error; err != nil {
		s.finish()
		return nil, err
	}

	go func() {
		defer s.finish()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		s.run(ctx, run)
	}()
	return run, nil
}

// LastRun returns the most recent sync run record.
func (s *SyncService) LastRun() (*models.SyncRun, error) {
	var run models.SyncRun
	err := database.GetDB().Order("started_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SyncService) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *SyncService) run(ctx context.Context, run *models.SyncRun) {
	db := database.GetDB()
	s.publish(SyncEvent{Type: EventSyncStarted, RunID: run.ID})
	log.Printf("🔄 Catalog sync %s started", run.ID)

	err := s.syncCatalog(ctx, run)

	now := time.Now().UTC()
	run.EndedAt = &now
	if err != nil {
		run.Status = models.SyncFailed
		run.Error = err.Error()
		db.Save(run)
		s.publish(SyncEvent{Type: EventSyncFailed, RunID: run.ID, Message: err.Error()})
		log.Printf("❌ Catalog sync %s failed: %v", run.ID, err)
		return
	}

	run.Status = models.SyncCompleted
	db.Save(run)

	if svc := GetSnapshotService(); svc != nil {
		if err := svc.Reload(); err != nil {
			log.Printf("Snapshot reload after sync failed: %v", err)
		}
	}

	s.publish(SyncEvent{Type: EventSyncCompleted, RunID: run.ID, Count: run.Achievements})
	log.Printf("✅ Catalog sync %s completed: %d achievements in %s",
		run.ID, run.Achievements, now.Sub(run.StartedAt).Round(time.Millisecond))
}

func (s *SyncService) syncCatalog(ctx context.Context, run *models.SyncRun) error {
	db := database.GetDB()

	groups, err := s.client.Groups(ctx)
	if err != nil {
		return err
	}
	groupRows := make([]models.AchievementGroup, 0, len(groups))
	categoryGroup := make(map[int]string)
	for _, g := range groups {
		cats, _ := json.Marshal(g.Categories)
		groupRows = append(groupRows, models.AchievementGroup{
			GW2ID:       g.ID,
			Name:        g.Name,
			Description: g.Description,
			Order:       g.Order,
			Categories:  cats,
		})
		for _, catID := range g.Categories {
			categoryGroup[catID] = g.Name
		}
	}
	if err := upsert(db, "gw2_id", groupRows,
		"name", "description", "order", "categories", "updated_at"); err != nil {
		return err
	}
	run.Groups = len(groupRows)
	s.publish(SyncEvent{Type: EventSyncProgress, RunID: run.ID, Stage: "groups", Count: run.Groups})

	categories, err := s.client.Categories(ctx)
	if err != nil {
		return err
	}
	categoryRows := make([]models.AchievementCategory, 0, len(categories))
	achievementCategory := make(map[int]string)
	achievementGroup := make(map[int]string)
	for _, c := range categories {
		achIDs, _ := json.Marshal(c.Achievements)
		categoryRows = append(categoryRows, models.AchievementCategory{
			GW2ID:        c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Order:        c.Order,
			Icon:         c.Icon,
			GroupName:    categoryGroup[c.ID],
			Achievements: achIDs,
		})
		for _, achID := range c.Achievements {
			achievementCategory[achID] = c.Name
			achievementGroup[achID] = categoryGroup[c.ID]
		}
	}
	if err := upsert(db, "gw2_id", categoryRows,
		"name", "description", "order", "icon", "group_name", "achievements", "updated_at"); err != nil {
		return err
	}
	run.Categories = len(categoryRows)
	s.publish(SyncEvent{Type: EventSyncProgress, RunID: run.ID, Stage: "categories", Count: run.Categories})

	ids, err := s.client.AchievementIDs(ctx)
	if err != nil {
		return err
	}
	achievements, err := s.client.Achievements(ctx, ids)
	if err != nil {
		return err
	}
	achievementRows := make([]models.Achievement, 0, len(achievements))
	for _, a := range achievements {
		flags, _ := json.Marshal(a.Flags)
		tiers, _ := json.Marshal(a.Tiers)
		rewards, _ := json.Marshal(a.Rewards)
		prereqs, _ := json.Marshal(a.Prerequisites)
		achievementRows = append(achievementRows, models.Achievement{
			GW2ID:         a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Requirement:   a.Requirement,
			Type:          a.Type,
			Flags:         flags,
			Tiers:         tiers,
			Rewards:       rewards,
			Prerequisites: prereqs,
			CategoryName:  achievementCategory[a.ID],
			GroupName:     achievementGroup[a.ID],
			PointTotal:    a.TotalPoints(),
		})
	}
	// Curation columns (is_legendary, community_priority) are local edits:
	// the upsert column list deliberately leaves them untouched.
	if err := upsert(db, "gw2_id", achievementRows,
		"name", "description", "requirement", "type", "flags", "tiers",
		"rewards", "prerequisites", "category_name", "group_name",
		"point_total", "updated_at"); err != nil {
		return err
	}
	run.Achievements = len(achievementRows)
	s.publish(SyncEvent{Type: EventSyncProgress, RunID: run.ID, Stage: "achievements", Count: run.Achievements})

	return s.hydrate(ctx, run, achievements)
}

// hydrate fetches item and title records referenced by rewards that are not
// cached yet. Hydration failures are logged, not fatal: the engine discounts
// unresolved rewards.
func (s *SyncService) hydrate(ctx context.Context, run *models.SyncRun, achievements []engine.Achievement) error {
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

	missingItems := missingIDs(db, &models.Item{}, itemIDs)
	if len(missingItems) > 0 {
		items, err := s.client.Items(ctx, missingItems)
		if err != nil {
			log.Printf("Item hydration incomplete: %v", err)
		} else {
			rows := make([]models.Item, 0, len(items))
			for _, it := range items {
				rows = append(rows, models.Item{
					GW2ID:       it.ID,
					Name:        it.Name,
					Rarity:      it.Rarity,
					VendorValue: it.VendorValue,
					Type:        it.Type,
					BagSize:     it.Details.Size,
					Icon:        it.Icon,
				})
			}
			if err := upsert(db, "gw2_id", rows,
				"name", "rarity", "vendor_value", "type", "bag_size", "icon", "updated_at"); err != nil {
				return err
			}
			run.Items = len(rows)
		}
	}

	missingTitles := missingIDs(db, &models.Title{}, titleIDs)
	if len(missingTitles) > 0 {
		titles, err := s.client.Titles(ctx, missingTitles)
		if err != nil {
			log.Printf("Title hydration incomplete: %v", err)
		} else {
			rows := make([]models.Title, 0, len(titles))
			for _, t := range titles {
				rows = append(rows, models.Title{GW2ID: t.ID, Name: t.Name})
			}
			if err := upsert(db, "gw2_id", rows, "name", "updated_at"); err != nil {
				return err
			}
			run.Titles = len(rows)
		}
	}

	s.publish(SyncEvent{Type: EventSyncProgress, RunID: run.ID, Stage: "rewards", Count: run.Items + run.Titles})
	return nil
}

func (s *SyncService) publish(ev SyncEvent) {
	if s.hub != nil {
		s.hub.Publish(ev)
	}
}
