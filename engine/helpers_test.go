package engine

// Shared test fixtures. ach builds a minimal catalog entry; snap builds a
// snapshot with empty category/group mappings unless a test supplies them.

func ach(id int, prereqs ...int) Achievement {
	return Achievement{
		ID:            id,
		Name:          "Achievement",
		Tiers:         []Tier{{Count: 1, Points: 1}},
		Prerequisites: prereqs,
	}
}

func snap(achievements ...Achievement) *Snapshot {
	return NewSnapshot(achievements, nil, nil, 1)
}

func done(ids ...int) ProgressMap {
	p := make(ProgressMap, len(ids))
	for _, id := range ids {
		p[id] = Progress{ID: id, Done: true}
	}
	return p
}
