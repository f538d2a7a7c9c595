package main

import (
	"encoding/json"
	"fmt"
	"os"

	"tyriatrack/engine"
)

// Lints a catalog dump for data problems that would degrade graph
// traversal: dangling or self-referencing prerequisites, prerequisite
// cycles and non-monotonic tier curves.

func main() {
	jsonPath := "./data/achievements.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		fmt.Println("error: cannot read catalog dump:", err)
		os.Exit(1)
	}

	var achievements []engine.Achievement
	if err := json.Unmarshal(data, &achievements); err != nil {
		fmt.Println("error: cannot parse catalog dump:", err)
		os.Exit(1)
	}
	if len(achievements) == 0 {
		fmt.Println("no achievements found in", jsonPath)
		return
	}

	byID := make(map[int]engine.Achievement, len(achievements))
	for _, a := range achievements {
		byID[a.ID] = a
	}

	bad := 0
	for _, a := range achievements {
		for _, p := range a.Prerequisites {
			if p == a.ID {
				fmt.Printf("achievement %d (%s): prerequisite references itself\n", a.ID, a.Name)
				bad++
			} else if _, ok := byID[p]; !ok {
				fmt.Printf("achievement %d (%s): dangling prerequisite %d\n", a.ID, a.Name, p)
				bad++
			}
		}
		for i := 1; i < len(a.Tiers); i++ {
			if a.Tiers[i].Count < a.Tiers[i-1].Count {
				fmt.Printf("achievement %d (%s): tier %d count decreases\n", a.ID, a.Name, i)
				bad++
			}
		}
	}

	for _, id := range findCycles(byID) {
		fmt.Printf("achievement %d (%s): prerequisite chain contains a cycle\n", id, byID[id].Name)
		bad++
	}

	if bad == 0 {
		fmt.Printf("%s: OK (%d achievements)\n", jsonPath, len(achievements))
		return
	}
	fmt.Printf("%d problems found\n", bad)
	os.Exit(1)
}

// findCycles returns the ids of achievements whose prerequisite closure
// contains a cycle, using a three-color depth-first search.
func findCycles(byID map[int]engine.Achievement) []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int, len(byID))
	var cyclic []int

	var visit func(id int) bool
	visit = func(id int) bool {
		color[id] = gray
		onCycle := false
		for _, p := range byID[id].Prerequisites {
			if _, ok := byID[p]; !ok {
				continue
			}
			switch color[p] {
			case gray:
				onCycle = true
			case white:
				if visit(p) {
					onCycle = true
				}
			}
		}
		color[id] = black
		if onCycle {
			cyclic = append(cyclic, id)
		}
		return onCycle
	}

	for id := range byID {
		if color[id] == white {
			visit(id)
		}
	}
	return cyclic
}
