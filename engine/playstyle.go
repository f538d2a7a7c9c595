// engine/playstyle.go - Playstyle classification
package engine

// Bucket names one thematic accumulator of the playstyle vector.
type Bucket string

const (
	BucketCompetitive Bucket = "competitive"
	BucketEndgame     Bucket = "endgame"
	BucketStory       Bucket = "story"
	BucketCollections Bucket = "collections"
	BucketMeta        Bucket = "meta"
	BucketExplorer    Bucket = "explorer"
)

// ScoreVector holds the weighted effort totals per thematic bucket,
// recomputed from scratch on every classification.
type ScoreVector struct {
	Competitive float64 `json:"competitive"`
	Endgame     float64 `json:"endgame"`
	Story       float64 `json:"story"`
	Collections float64 `json:"collections"`
	Meta        float64 `json:"meta"`
	Explorer    float64 `json:"explorer"`
}

// Display labels per winning bucket. Explorer doubles as the balanced/default
// label when no bucket clearly leads.
const (
	LabelBattlemaster = "Battlemaster"
	LabelCommander    = "Commander"
	LabelHistorian    = "Historian"
	LabelCollector    = "Collector"
	LabelExplorer     = "Explorer"
)

var bucketLabels = map[Bucket]string{
	BucketCompetitive: LabelBattlemaster,
	BucketEndgame:     LabelCommander,
	BucketStory:       LabelHistorian,
	BucketCollections: LabelCollector,
	BucketMeta:        LabelCollector,
}

var (
	competitiveKeywords = []string{"pvp", "wvw", "world vs", "competitive"}
	endgameKeywords     = []string{"raid", "strike", "fractal"}
	storyKeywords = []string{
		"story", "living world", "heart of thorns", "path of fire",
		"end of dragons", "secrets of the obscure", "janthir", "icebrood",
	}
	collectionKeywords = []string{"legendary", "fashion", "collection"}
	collectionNames    = []string{"collection", "collector", "set"}
	explorerKeywords   = []string{"explor", "open world", "mastery", "map"}

	// Base-game region groups count toward Explorer even without a keyword
	// hit.
	baseGameGroups = []string{"central tyria"}
)

// Classify aggregates a user's weighted completions into the six-bucket
// vector and picks a display label. Entries whose achievement is missing
// from the catalog are skipped. The label only leaves Explorer when the
// leading non-Explorer bucket is nonzero and beats the runner-up by more
// than 20%, which deliberately keeps Explorer as the safe default for
// balanced or sparse histories.
func Classify(progress ProgressMap, s *Snapshot) (string, ScoreVector) {
	var v ScoreVector
	for id, p := range progress {
		a, ok := s.Achievements[id]
		if !ok {
			continue
		}

		weight := float64(a.TotalPoints()) * progressWeight(p)
		if weight == 0 {
			continue
		}

		group := s.GroupName(id)
		switch {
		case containsAny(group, competitiveKeywords):
			v.Competitive += weight
		case containsAny(group, endgameKeywords):
			v.Endgame += weight
		case containsAny(group, storyKeywords):
			v.Story += weight
		case isCollection(a, group):
			v.Collections += weight
		case a.HasFlag(FlagCategoryDisplay):
			v.Meta += weight
		case containsAny(group, explorerKeywords) || containsAny(a.Name, explorerKeywords) || containsAny(group, baseGameGroups):
			v.Explorer += weight
		default:
			// A non-match still counts partially toward the balanced
			// player.
			v.Explorer += weight * 0.5
		}
	}
	return pickLabel(v), v
}

func progressWeight(p Progress) float64 {
	if p.Completed() {
		return 1.0
	}
	if p.Current > 0 && p.Max > 0 {
		f := float64(p.Current) / float64(p.Max)
		if f > 1 {
			f = 1
		}
		if f < 0.3 {
			return 0.3
		}
		return f
	}
	return 0.3
}

func isCollection(a Achievement, group string) bool {
	if a.Type == "ItemSet" {
		return true
	}
	return containsAny(group, collectionKeywords) ||
		containsAny(a.Name, collectionKeywords) ||
		containsAny(a.Name, collectionNames)
}

func pickLabel(v ScoreVector) string {
	scored := []struct {
		bucket Bucket
		total  float64
	}{
		{BucketCompetitive, v.Competitive},
		{BucketEndgame, v.Endgame},
		{BucketStory, v.Story},
		{BucketCollections, v.Collections},
		{BucketMeta, v.Meta},
	}

	lead, runner := scored[0], scored[1]
	if runner.total > lead.total {
		lead, runner = runner, lead
	}
	for _, s := range scored[2:] {
		if s.total > lead.total {
			runner = lead
			lead = s
		} else if s.total > runner.total {
			runner = s
		}
	}

	if lead.total > 0 && lead.total > runner.total*1.2 {
		return bucketLabels[lead.bucket]
	}
	return LabelExplorer
}
