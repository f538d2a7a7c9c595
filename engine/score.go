// engine/score.go - Recommendation scoring and flavor filtering
package engine

import (
	"strconv"
	"strings"
)

// Component caps. Every score component saturates independently.
const (
	apCap         = 100.0
	lootCap       = 80.0
	easeCap       = 60.0
	unlockCap     = 50.0
	metaBonus     = 40.0
	priorityBonus = 10.0

	maxRecommendations = 12
	quickWinThreshold  = 0.8
)

// rarityBonus weights item rewards by rarity tier.
var rarityBonus = map[string]float64{
	"Legendary":  50,
	"Ascended":   30,
	"Exotic":     15,
	"Rare":       8,
	"Masterwork": 4,
	"Fine":       2,
	"Basic":      1,
}

// mountKeywords flag reward items that grant mounts.
var mountKeywords = []string{
	"raptor", "springer", "skimmer", "jackal", "griffon",
	"roller beetle", "warclaw", "skyscale", "siege turtle",
}

// Score computes the desirability of an achievement for recommendation
// ranking. Higher is better. Deterministic in its inputs; unhydrated reward
// references simply contribute nothing. The full progress map is needed
// because readiness looks at the prerequisites' completion, not just the
// candidate's own entry.
func Score(a Achievement, progress ProgressMap, unlocks map[int][]int) float64 {
	total := capped(float64(a.TotalPoints())*0.5, apCap)
	total += lootScore(a)
	total += easeScore(progress[a.ID], a)
	total += capped(float64(len(unlocks[a.ID]))*5, unlockCap)
	total += readinessScore(a, progress)

	if a.HasFlag(FlagCategoryDisplay) {
		total += metaBonus
	}
	if a.CommunityPriority {
		total += priorityBonus
	}
	return total
}

func lootScore(a Achievement) float64 {
	score := 0.0
	for _, r := range a.Rewards {
		switch r.Type {
		case RewardMastery:
			score += 25
		case RewardTitle:
			score += 5
		case RewardItem:
			if r.Item == nil {
				continue // not hydrated yet
			}
			score += float64(r.Item.VendorValue) / 1000
			score += rarityBonus[r.Item.Rarity]
			if size := bagSize(r.Item); size >= 20 {
				score += 20
			} else if size >= 15 {
				score += 10
			}
			if containsAny(r.Item.Name, mountKeywords) {
				score += 40
			}
		}
	}
	return capped(score, lootCap)
}

// easeScore relies on the readiness parameter differently depending on
// whether the user has started: started achievements scale with completion
// fraction, untouched ones get a flat bonus when they look easy (few tiers,
// nothing to unlock first).
func easeScore(p Progress, a Achievement) float64 {
	if p.Current > 0 || p.Completed() {
		return capped(p.Fraction()*easeCap, easeCap)
	}
	if len(a.Tiers) <= 3 && len(a.Prerequisites) == 0 {
		return 20
	}
	return 0
}

// readinessScore rewards achievements the user can start right now: +30 when
// every prerequisite is already completed, +20 when there are none at all,
// nothing while prerequisites remain unmet.
func readinessScore(a Achievement, progress ProgressMap) float64 {
	if len(a.Prerequisites) == 0 {
		return 20
	}
	for _, p := range a.Prerequisites {
		if !progress[p].Completed() {
			return 0
		}
	}
	return 30
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

// bagSize returns the slot count of a bag-type item, falling back to parsing
// the leading number out of names like "20 Slot Craftsman's Bag" when the
// item details were not hydrated with a size.
func bagSize(item *ItemInfo) int {
	if item.BagSize > 0 {
		return item.BagSize
	}
	lower := strings.ToLower(item.Name)
	if !strings.Contains(lower, "slot") && !strings.Contains(lower, "bag") {
		return 0
	}
	for _, field := range strings.Fields(lower) {
		if n, err := strconv.Atoi(field); err == nil {
			return n
		}
	}
	return 0
}
