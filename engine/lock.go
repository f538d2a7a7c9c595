// engine/lock.go - Lock evaluation
package engine

// regionAccess maps the region name carried by a Mastery reward to the
// account access token required to attempt it. Regions missing from this
// table never lock an achievement.
var regionAccess = map[string]string{
	"Tyria":   "GuildWars2",
	"Maguuma": "HeartOfThorns",
	"Desert":  "PathOfFire",
	"Tundra":  "GuildWars2",
	"Jade":    "EndOfDragons",
	"Sky":     "SecretsOfTheObscure",
	"Janthir": "JanthirWilds",
	"Unknown": "GuildWars2",
}

// IsLocked reports whether the achievement is currently unattemptable for
// the given user state.
//
// An achievement with prerequisites is locked until every prerequisite has a
// completed progress entry; a missing entry counts as not completed. Only
// when there are no prerequisites do Mastery rewards gate on account access:
// every reward region that maps through regionAccess must resolve to an owned
// token.
func IsLocked(a Achievement, progress ProgressMap, access AccessSet) bool {
	if len(a.Prerequisites) > 0 {
		for _, p := range a.Prerequisites {
			if !progress[p].Completed() {
				return true
			}
		}
		return false
	}

	for _, r := range a.Rewards {
		if r.Type != RewardMastery || r.Region == "" {
			continue
		}
		token, gated := regionAccess[r.Region]
		if gated && !access[token] {
			return true
		}
	}
	return false
}
