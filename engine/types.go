// engine/types.go - Core catalog and progress types
//
// The engine package is the pure computational core of tyriatrack: it builds
// the prerequisite/unlock graph over the achievement catalog, evaluates lock
// state, resolves prerequisite chains, scores recommendation candidates and
// classifies a player's playstyle. Everything in this package operates on
// in-memory snapshots and has no database or network dependencies.
package engine

import "strings"

// Reward type tags as they appear in the GW2 achievement payload. Upstream
// defines more types; anything not listed here is carried opaquely.
const (
	RewardItem    = "Item"
	RewardTitle   = "Title"
	RewardMastery = "Mastery"
)

// Achievement flags with engine-level meaning.
const (
	FlagRepeatable      = "Repeatable"
	FlagCategoryDisplay = "CategoryDisplay"
	FlagDaily           = "Daily"
	FlagWeekly          = "Weekly"
	FlagMonthly         = "Monthly"
)

// Tier is one step of an achievement's progress curve: reach Count to earn
// Points. Tiers are ordered and monotonically increasing in both fields.
type Tier struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

// ItemInfo is the subset of an item record the scorer cares about. Rewards
// referencing items are hydrated asynchronously, so this may be nil on a
// Reward long after the catalog itself has loaded.
type ItemInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Rarity      string `json:"rarity"`
	VendorValue int    `json:"vendor_value"`
	Type        string `json:"type"`
	// BagSize is the slot count for bag-type items, 0 otherwise.
	BagSize int `json:"bag_size"`
}

// TitleInfo is a hydrated title record.
type TitleInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Reward is a tagged variant: Item (with count), Title, Mastery (with a
// region name) or any other upstream type carried opaquely. Item and Title
// pointers stay nil until hydration resolves them.
type Reward struct {
	Type   string `json:"type"`
	ID     int    `json:"id,omitempty"`
	Count  int    `json:"count,omitempty"`
	Region string `json:"region,omitempty"`

	Item  *ItemInfo  `json:"item,omitempty"`
	Title *TitleInfo `json:"title,omitempty"`
}

// Achievement is one immutable catalog entry. Prerequisites may reference
// ids missing from the current snapshot; traversals drop such references
// silently.
type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Requirement string `json:"requirement"`
	Type        string `json:"type"`

	Flags         []string `json:"flags"`
	Tiers         []Tier   `json:"tiers"`
	Rewards       []Reward `json:"rewards,omitempty"`
	Prerequisites []int    `json:"prerequisites,omitempty"`

	// Community curation carried over from the catalog store.
	Legendary         bool `json:"is_legendary,omitempty"`
	CommunityPriority bool `json:"community_priority,omitempty"`
}

// HasFlag reports whether the achievement carries the given flag.
func (a Achievement) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Periodic reports whether the achievement is a daily/weekly/monthly rotation
// entry. Periodic achievements are excluded from every user-facing view and
// from the graph's effective traversal.
func (a Achievement) Periodic() bool {
	return a.HasFlag(FlagDaily) || a.HasFlag(FlagWeekly) || a.HasFlag(FlagMonthly)
}

// TotalPoints sums the point values of every tier.
func (a Achievement) TotalPoints() int {
	total := 0
	for _, t := range a.Tiers {
		total += t.Points
	}
	return total
}

// MaxCount returns the highest tier threshold, the effective completion
// target for the achievement.
func (a Achievement) MaxCount() int {
	if len(a.Tiers) == 0 {
		return 0
	}
	return a.Tiers[len(a.Tiers)-1].Count
}

// Progress is a user's state on a single achievement, replaced wholesale on
// every account sync. Repeated counts completions of repeatable achievements,
// which accumulate there instead of toggling Done.
type Progress struct {
	ID       int  `json:"id"`
	Current  int  `json:"current"`
	Max      int  `json:"max"`
	Done     bool `json:"done"`
	Repeated int  `json:"repeated,omitempty"`
}

// Completed is the single completion predicate used everywhere the engine
// asks "is this achievement finished".
func (p Progress) Completed() bool {
	return p.Done || p.Repeated > 0
}

// Fraction returns completion progress clamped into [0,1]. A zero Max never
// divides.
func (p Progress) Fraction() float64 {
	if p.Completed() {
		return 1
	}
	if p.Max <= 0 || p.Current <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Max)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressMap indexes user progress by achievement id. Missing entries read
// as the zero Progress, which counts as not completed.
type ProgressMap map[int]Progress

// AccessSet is the set of account access tokens (owned expansions).
type AccessSet map[string]bool

// NewAccessSet builds an AccessSet from the token list returned by the
// account endpoint.
func NewAccessSet(tokens []string) AccessSet {
	s := make(AccessSet, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

func containsAny(haystack string, keywords []string) bool {
	h := strings.ToLower(haystack)
	for _, k := range keywords {
		if strings.Contains(h, k) {
			return true
		}
	}
	return false
}
