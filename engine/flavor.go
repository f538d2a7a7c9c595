// engine/flavor.go - Flavor presets and recommendation ranking
package engine

import "sort"

// Flavor names a recommendation filter preset.
type Flavor string

const (
	FlavorUnrestricted Flavor = "unrestricted"
	FlavorQuickWins    Flavor = "quick-wins"
	FlavorLegendary    Flavor = "legendary-gear"
	FlavorFashion      Flavor = "fashion"
	FlavorSeasonal     Flavor = "seasonal"
	FlavorMastery      Flavor = "mastery"
	FlavorMeta         Flavor = "meta"
	FlavorStory        Flavor = "story"
	FlavorEndgame      Flavor = "endgame"
	FlavorCompetitive  Flavor = "competitive"
)

// flavorKeywords are matched case-insensitively against an achievement's
// type, name and group name. One table per preset, shared by every caller.
var flavorKeywords = map[Flavor][]string{
	FlavorLegendary: {"legendary", "gift of", "precursor"},
	FlavorFashion:   {"fashion", "skin", "wardrobe", "outfit", "dye"},
	FlavorSeasonal: {
		"festival", "wintersday", "halloween", "shadow of the mad king",
		"lunar new year", "super adventure", "dragon bash",
	},
	FlavorMastery: {"mastery"},
	FlavorMeta:    {"meta"},
	FlavorStory:   {"story", "living world", "season", "personal story"},
	FlavorEndgame: {"raid", "strike", "fractal", "dungeon"},
	FlavorCompetitive: {
		"pvp", "wvw", "world vs", "arena", "tournament", "conquest",
	},
}

// ValidFlavor reports whether name is a known preset. The empty string is
// accepted as unrestricted.
func ValidFlavor(name string) bool {
	switch Flavor(name) {
	case FlavorUnrestricted, FlavorQuickWins, "":
		return true
	}
	_, ok := flavorKeywords[Flavor(name)]
	return ok
}

func matchesFlavor(a Achievement, group string, flavor Flavor) bool {
	switch flavor {
	case "", FlavorUnrestricted, FlavorQuickWins:
		return true
	case FlavorLegendary:
		if a.Legendary {
			return true
		}
	case FlavorMeta:
		if a.HasFlag(FlagCategoryDisplay) {
			return true
		}
	}
	keywords := flavorKeywords[flavor]
	return containsAny(a.Type, keywords) ||
		containsAny(a.Name, keywords) ||
		containsAny(group, keywords)
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	Achievement Achievement `json:"achievement"`
	Score       float64     `json:"score"`
	Fraction    float64     `json:"fraction"`
	Category    string      `json:"category,omitempty"`
	Group       string      `json:"group,omitempty"`
}

// Recommend ranks the catalog for a user and returns the top candidates for
// a flavor. Completed, periodic and locked achievements never appear. The
// quick-wins preset ignores the scorer and ranks by completion fraction
// instead, keeping only nearly finished items.
func Recommend(s *Snapshot, progress ProgressMap, access AccessSet, flavor Flavor) []Recommendation {
	var out []Recommendation
	for _, id := range s.Order {
		a := s.Achievements[id]
		p := progress[id]
		if p.Completed() || a.Periodic() {
			continue
		}
		if IsLocked(a, progress, access) {
			continue
		}
		if !matchesFlavor(a, s.GroupName(id), flavor) {
			continue
		}

		rec := Recommendation{
			Achievement: a,
			Fraction:    p.Fraction(),
			Category:    s.Categories[id],
			Group:       s.GroupName(id),
		}
		if flavor == FlavorQuickWins {
			if rec.Fraction < quickWinThreshold {
				continue
			}
		} else {
			rec.Score = Score(a, progress, s.UnlockMap)
		}
		out = append(out, rec)
	}

	if flavor == FlavorQuickWins {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Fraction > out[j].Fraction
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}

	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}
