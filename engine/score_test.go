package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_WorkedExample(t *testing.T) {
	a := Achievement{
		ID:    1,
		Tiers: []Tier{{Count: 1, Points: 5}, {Count: 2, Points: 10}},
	}
	progress := ProgressMap{1: {ID: 1, Current: 2, Max: 2, Done: true}}

	// AP 7.5 + ease 60 (full progress) + readiness 20 (no prerequisites).
	if got := Score(a, progress, nil); !almostEqual(got, 87.5) {
		t.Errorf("Score = %v, want 87.5", got)
	}
}

func TestScore_APComponentSaturates(t *testing.T) {
	big := Achievement{ID: 1, Tiers: []Tier{{Count: 1, Points: 300}}}
	bigger := Achievement{ID: 2, Tiers: []Tier{{Count: 1, Points: 500}}}

	if Score(big, nil, nil) != Score(bigger, nil, nil) {
		t.Error("achievements past 200 total points must score the same AP component")
	}
}

func TestScore_LootComponents(t *testing.T) {
	tests := []struct {
		name   string
		reward Reward
		want   float64
	}{
		{"mastery flat", Reward{Type: RewardMastery, Region: "Tyria"}, 25},
		{"title flat", Reward{Type: RewardTitle, ID: 9}, 5},
		{"unhydrated item ignored", Reward{Type: RewardItem, ID: 100}, 0},
		{
			"exotic with vendor value",
			Reward{Type: RewardItem, ID: 100, Item: &ItemInfo{Name: "Sword", Rarity: "Exotic", VendorValue: 3000}},
			15 + 3,
		},
		{
			"large bag by metadata",
			Reward{Type: RewardItem, ID: 100, Item: &ItemInfo{Name: "Pack", Rarity: "Fine", Type: "Bag", BagSize: 20}},
			2 + 20,
		},
		{
			"medium bag by name fallback",
			Reward{Type: RewardItem, ID: 100, Item: &ItemInfo{Name: "18 Slot Bag", Rarity: "Fine"}},
			2 + 10,
		},
		{
			"mount by name",
			Reward{Type: RewardItem, ID: 100, Item: &ItemInfo{Name: "Skyscale Saddle", Rarity: "Rare"}},
			8 + 40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Achievement{ID: 1, Rewards: []Reward{tt.reward}}
			if got := lootScore(a); !almostEqual(got, tt.want) {
				t.Errorf("lootScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_LootCapped(t *testing.T) {
	legendary := Reward{
		Type: RewardItem,
		ID:   100,
		Item: &ItemInfo{Name: "Eternity", Rarity: "Legendary", VendorValue: 100000},
	}
	a := Achievement{ID: 1, Rewards: []Reward{legendary, legendary}}

	if got := lootScore(a); got != 80 {
		t.Errorf("lootScore = %v, want cap 80", got)
	}
}

func TestScore_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		a        Achievement
		progress ProgressMap
		want     float64
	}{
		{"no prerequisites", ach(1), nil, 20},
		{"all prerequisites met", ach(2, 1), done(1), 30},
		{"unmet prerequisites", ach(2, 1), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readinessScore(tt.a, tt.progress); got != tt.want {
				t.Errorf("readinessScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_MetaAndPriorityBonuses(t *testing.T) {
	plain := ach(1)
	meta := ach(1)
	meta.Flags = []string{FlagCategoryDisplay}
	priority := ach(1)
	priority.CommunityPriority = true

	base := Score(plain, nil, nil)
	if got := Score(meta, nil, nil); !almostEqual(got, base+40) {
		t.Errorf("CategoryDisplay bonus: got %v, want %v", got, base+40)
	}
	if got := Score(priority, nil, nil); !almostEqual(got, base+10) {
		t.Errorf("community priority bonus: got %v, want %v", got, base+10)
	}
}

func TestScore_UnlockPotentialCapped(t *testing.T) {
	unlocks := map[int][]int{1: {2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}}

	withFanout := Score(ach(1), nil, unlocks)
	without := Score(ach(1), nil, nil)

	if got := withFanout - without; got != 50 {
		t.Errorf("unlock component = %v, want cap 50", got)
	}
}

func TestRecommend_FiltersCandidates(t *testing.T) {
	completed := ach(1)
	daily := ach(2)
	daily.Flags = []string{FlagDaily}
	locked := ach(3, 99) // dangling prerequisite, never completable
	open := ach(4)

	s := snap(completed, daily, locked, open)
	progress := done(1)

	recs := Recommend(s, progress, nil, FlavorUnrestricted)

	if len(recs) != 1 || recs[0].Achievement.ID != 4 {
		t.Errorf("Recommend = %v, want only achievement 4", recs)
	}
}

func TestRecommend_TruncatesToTwelve(t *testing.T) {
	var catalog []Achievement
	for id := 1; id <= 20; id++ {
		catalog = append(catalog, ach(id))
	}

	recs := Recommend(snap(catalog...), nil, nil, FlavorUnrestricted)

	if len(recs) != maxRecommendations {
		t.Errorf("got %d recommendations, want %d", len(recs), maxRecommendations)
	}
}

func TestRecommend_SortsByScoreDescending(t *testing.T) {
	low := ach(1)
	high := ach(2)
	high.Tiers = []Tier{{Count: 1, Points: 100}}

	recs := Recommend(snap(low, high), nil, nil, FlavorUnrestricted)

	if len(recs) != 2 || recs[0].Achievement.ID != 2 {
		t.Errorf("expected achievement 2 ranked first: %v", recs)
	}
}

func TestRecommend_QuickWins(t *testing.T) {
	nearly := ach(1)
	halfway := ach(2)
	closer := ach(3)

	s := snap(nearly, halfway, closer)
	progress := ProgressMap{
		1: {ID: 1, Current: 8, Max: 10},
		2: {ID: 2, Current: 5, Max: 10},
		3: {ID: 3, Current: 9, Max: 10},
	}

	recs := Recommend(s, progress, nil, FlavorQuickWins)

	if len(recs) != 2 {
		t.Fatalf("got %d quick wins, want 2 (threshold 80%%): %v", len(recs), recs)
	}
	if recs[0].Achievement.ID != 3 || recs[1].Achievement.ID != 1 {
		t.Errorf("quick wins not sorted by fraction descending: %v", recs)
	}
}

func TestRecommend_FlavorKeywordMatching(t *testing.T) {
	pvp := ach(1)
	raid := ach(2)
	cats := map[int]string{1: "Conquest", 2: "Wing 1"}
	groups := map[string]string{"Conquest": "PvP League", "Wing 1": "Raids"}

	s := NewSnapshot([]Achievement{pvp, raid}, cats, groups, 1)

	recs := Recommend(s, nil, nil, FlavorCompetitive)
	if len(recs) != 1 || recs[0].Achievement.ID != 1 {
		t.Errorf("competitive flavor = %v, want only the PvP achievement", recs)
	}

	recs = Recommend(s, nil, nil, FlavorEndgame)
	if len(recs) != 1 || recs[0].Achievement.ID != 2 {
		t.Errorf("endgame flavor = %v, want only the raid achievement", recs)
	}
}

func TestRecommend_LegendaryFlagBypassesKeywords(t *testing.T) {
	tagged := ach(1)
	tagged.Legendary = true

	recs := Recommend(snap(tagged), nil, nil, FlavorLegendary)
	if len(recs) != 1 {
		t.Errorf("legendary-tagged achievement missing from legendary-gear flavor: %v", recs)
	}
}

func TestValidFlavor(t *testing.T) {
	for _, name := range []string{"", "unrestricted", "quick-wins", "fashion", "competitive"} {
		if !ValidFlavor(name) {
			t.Errorf("ValidFlavor(%q) = false", name)
		}
	}
	if ValidFlavor("speedrun") {
		t.Error("unknown flavor accepted")
	}
}
