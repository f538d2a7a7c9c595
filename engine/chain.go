// engine/chain.go - Prerequisite chain resolution
package engine

// ChainStatus classifies one chain member relative to the user.
type ChainStatus string

const (
	StatusCompleted  ChainStatus = "completed"
	StatusCurrent    ChainStatus = "current"
	StatusNext       ChainStatus = "next"
	StatusInProgress ChainStatus = "in-progress"
	StatusFuture     ChainStatus = "future"
)

// ChainEntry is one achievement in a resolved chain with its status.
type ChainEntry struct {
	Achievement Achievement `json:"achievement"`
	Status      ChainStatus `json:"status"`
}

// UnlockGroup marks a fan-out: completing Source makes every member
// attemptable at once. Members appear contiguously after Source in the chain
// and have no other in-chain prerequisite.
type UnlockGroup struct {
	SourceID int   `json:"source_id"`
	Members  []int `json:"members"`
}

// Chain is the resolved prerequisite+unlock closure of a target achievement,
// topologically ordered with per-member statuses.
type Chain struct {
	TargetID int          `json:"target_id"`
	Entries  []ChainEntry `json:"entries"`
	Groups   []UnlockGroup `json:"groups,omitempty"`
}

// chainOrder is the progress-independent part of a resolved chain, memoized
// per snapshot since the closure and its order only change when the catalog
// does.
type chainOrder struct {
	ids    []int
	groups []UnlockGroup
}

// ResolveChain computes the transitive prerequisite and unlock closure of the
// target, orders it so prerequisites always precede dependents, and assigns
// each member a status for the given user state. Returns false when the
// target id is not in the catalog.
func ResolveChain(targetID int, s *Snapshot, progress ProgressMap, access AccessSet) (*Chain, bool) {
	if _, ok := s.Achievements[targetID]; !ok {
		return nil, false
	}

	order := s.resolveOrder(targetID)
	chain := &Chain{
		TargetID: targetID,
		Entries:  make([]ChainEntry, len(order.ids)),
		Groups:   order.groups,
	}

	closure := make(map[int]bool, len(order.ids))
	for _, id := range order.ids {
		closure[id] = true
	}

	targetIdx := 0
	for i, id := range order.ids {
		chain.Entries[i] = ChainEntry{Achievement: s.Achievements[id]}
		if id == targetID {
			targetIdx = i
		}
	}

	// First pass: completed / current.
	for i := range chain.Entries {
		id := chain.Entries[i].Achievement.ID
		switch {
		case progress[id].Completed():
			chain.Entries[i].Status = StatusCompleted
		case id == targetID:
			chain.Entries[i].Status = StatusCurrent
		}
	}

	// Single actionable next step: scan just before the target backward,
	// then just after it forward, for the first not-completed member whose
	// in-closure prerequisites are all completed and whose mastery rewards
	// are not gated by missing account access.
	nextIdx := -1
	candidate := func(i int) bool {
		e := chain.Entries[i]
		if e.Status == StatusCompleted {
			return false
		}
		for _, p := range s.prerequisitesIn(e.Achievement.ID) {
			if closure[p] && !progress[p].Completed() {
				return false
			}
		}
		return !masteryLocked(e.Achievement, access)
	}
	for i := targetIdx - 1; i >= 0 && nextIdx < 0; i-- {
		if candidate(i) {
			nextIdx = i
		}
	}
	for i := targetIdx + 1; i < len(chain.Entries) && nextIdx < 0; i++ {
		if candidate(i) {
			nextIdx = i
		}
	}
	if nextIdx >= 0 && chain.Entries[nextIdx].Status == "" {
		chain.Entries[nextIdx].Status = StatusNext
	}

	// Remaining members: in-progress when partially advanced, future
	// otherwise.
	for i := range chain.Entries {
		if chain.Entries[i].Status != "" {
			continue
		}
		if progress[chain.Entries[i].Achievement.ID].Current > 0 {
			chain.Entries[i].Status = StatusInProgress
		} else {
			chain.Entries[i].Status = StatusFuture
		}
	}

	return chain, true
}

func masteryLocked(a Achievement, access AccessSet) bool {
	for _, r := range a.Rewards {
		if r.Type != RewardMastery || r.Region == "" {
			continue
		}
		if token, gated := regionAccess[r.Region]; gated && !access[token] {
			return true
		}
	}
	return false
}

// resolveOrder returns the memoized closure order for a target, computing it
// on first use per snapshot.
func (s *Snapshot) resolveOrder(targetID int) *chainOrder {
	s.chainMu.RLock()
	cached, ok := s.chainCache[targetID]
	s.chainMu.RUnlock()
	if ok {
		return cached
	}

	order := s.buildOrder(targetID)

	s.chainMu.Lock()
	s.chainCache[targetID] = order
	s.chainMu.Unlock()
	return order
}

func (s *Snapshot) buildOrder(targetID int) *chainOrder {
	// Effective traversal skips periodic rotation achievements.
	prereqEdges := func(id int) []int {
		var out []int
		for _, p := range s.prerequisitesIn(id) {
			if !s.Achievements[p].Periodic() {
				out = append(out, p)
			}
		}
		return out
	}
	unlockEdges := func(id int) []int {
		var out []int
		for _, u := range s.UnlockMap[id] {
			if a, ok := s.Achievements[u]; ok && !a.Periodic() {
				out = append(out, u)
			}
		}
		return out
	}

	visited := map[int]bool{targetID: true}
	before := collect(prereqEdges(targetID), prereqEdges, visited)
	after := collect(unlockEdges(targetID), unlockEdges, visited)

	ids := make([]int, 0, len(before)+len(after)+1)
	ids = append(ids, before...)
	ids = append(ids, targetID)
	ids = append(ids, after...)

	sorted := topoSort(ids, s.prerequisitesIn)
	return &chainOrder{ids: sorted, groups: detectGroups(sorted, s)}
}

// detectGroups finds simultaneous unlock fan-outs in a sorted chain: a member
// X whose direct unlocks (restricted to the chain) number more than one, sit
// contiguously right after X, and have no in-chain prerequisite besides X.
func detectGroups(sorted []int, s *Snapshot) []UnlockGroup {
	pos := make(map[int]int, len(sorted))
	for i, id := range sorted {
		pos[id] = i
	}

	var groups []UnlockGroup
	for i, id := range sorted {
		var members []int
		for _, u := range s.UnlockMap[id] {
			if _, in := pos[u]; in {
				members = append(members, u)
			}
		}
		if len(members) < 2 {
			continue
		}

		contiguous := true
		for _, m := range members {
			p, in := pos[m]
			if !in || p <= i || p > i+len(members) {
				contiguous = false
				break
			}
			for _, mp := range s.prerequisitesIn(m) {
				if _, in := pos[mp]; in && mp != id {
					contiguous = false
					break
				}
			}
			if !contiguous {
				break
			}
		}
		if contiguous {
			groups = append(groups, UnlockGroup{SourceID: id, Members: members})
		}
	}
	return groups
}
