// engine/graph.go - Prerequisite/unlock graph index
package engine

// BuildUnlockMap derives the unlock adjacency from the flat catalog: for
// every achievement A listing B as a prerequisite, A is appended to
// unlockMap[B]. The result is the exact transpose of the prerequisite
// relation. Prerequisite ids absent from the input never become keys.
//
// Pure and idempotent; the catalog loads incrementally and this is rebuilt
// from scratch on every change.
func BuildUnlockMap(achievements []Achievement) map[int][]int {
	unlocks := make(map[int][]int)
	for _, a := range achievements {
		for _, p := range a.Prerequisites {
			unlocks[p] = append(unlocks[p], a.ID)
		}
	}
	return unlocks
}

// collect walks edges from the given seeds, accumulating every reachable id
// into the visited set in encounter order. Cycles terminate on the visited
// check. The returned slice excludes ids already in visited when collect was
// called.
func collect(seeds []int, edges func(int) []int, visited map[int]bool) []int {
	var out []int
	var walk func(id int)
	walk = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		out = append(out, id)
		for _, next := range edges(id) {
			walk(next)
		}
	}
	for _, id := range seeds {
		walk(id)
	}
	return out
}

// topoSort orders ids so that every id appears after all of its in-set
// prerequisites (DFS post-order). Ties break by input order. A cycle member
// re-encountered while still on the stack is treated as already placed and
// skipped, so malformed upstream data cannot loop the sort.
func topoSort(ids []int, prereqs func(int) []int) []int {
	inSet := make(map[int]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	placed := make(map[int]bool, len(ids))
	onStack := make(map[int]bool)
	out := make([]int, 0, len(ids))

	var visit func(id int)
	visit = func(id int) {
		if placed[id] || onStack[id] {
			return
		}
		onStack[id] = true
		for _, p := range prereqs(id) {
			if inSet[p] {
				visit(p)
			}
		}
		onStack[id] = false
		placed[id] = true
		out = append(out, id)
	}

	for _, id := range ids {
		visit(id)
	}
	return out
}
