// engine/snapshot.go - Immutable per-sync view of the catalog
package engine

import "sync"

// Snapshot is a read-only view of one catalog generation plus the graph
// structures derived from it. A new Snapshot is built whenever the catalog
// changes; nothing in it is mutated afterwards except the internal chain
// cache, which only memoizes pure derivations.
type Snapshot struct {
	// Achievements indexes the catalog by id.
	Achievements map[int]Achievement
	// Order preserves catalog encounter order for deterministic traversal.
	Order []int
	// Categories maps achievement id -> category name.
	Categories map[int]string
	// Groups maps category name -> group name.
	Groups map[string]string
	// UnlockMap is the transpose of the prerequisite relation.
	UnlockMap map[int][]int
	// Revision increments once per rebuild.
	Revision uint64

	chainMu    sync.RWMutex
	chainCache map[int]*chainOrder
}

// NewSnapshot builds a snapshot from a flat catalog slice and the category
// and group name mappings. The unlock map is always rebuilt from scratch,
// never maintained incrementally.
func NewSnapshot(achievements []Achievement, categories map[int]string, groups map[string]string, revision uint64) *Snapshot {
	s := &Snapshot{
		Achievements: make(map[int]Achievement, len(achievements)),
		Order:        make([]int, 0, len(achievements)),
		Categories:   categories,
		Groups:       groups,
		UnlockMap:    BuildUnlockMap(achievements),
		Revision:     revision,
		chainCache:   make(map[int]*chainOrder),
	}
	if s.Categories == nil {
		s.Categories = map[int]string{}
	}
	if s.Groups == nil {
		s.Groups = map[string]string{}
	}
	for _, a := range achievements {
		if _, dup := s.Achievements[a.ID]; dup {
			continue
		}
		s.Achievements[a.ID] = a
		s.Order = append(s.Order, a.ID)
	}
	return s
}

// GroupName resolves an achievement id to its group name, or "" when either
// mapping is missing.
func (s *Snapshot) GroupName(id int) string {
	return s.Groups[s.Categories[id]]
}

// prerequisitesIn returns the achievement's prerequisites restricted to ids
// present in the catalog. References to absent achievements are dropped.
func (s *Snapshot) prerequisitesIn(id int) []int {
	a, ok := s.Achievements[id]
	if !ok {
		return nil
	}
	var out []int
	for _, p := range a.Prerequisites {
		if _, present := s.Achievements[p]; present {
			out = append(out, p)
		}
	}
	return out
}
