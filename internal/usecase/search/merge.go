package search

import "github.com/pathwise-edu/pathwise/internal/domain/resource"

// mergeRoundRobin interleaves provider lists one item per provider per pass.
//
// Empty lists are dropped and the order of the rest is shuffled once. A
// duplicate (by DedupKey) consumes its provider's turn. A provider whose list
// runs out leaves the rotation at once; the providers after it in the same
// pass still take their turn. Items without a key are never duplicates.
func mergeRoundRobin(lists [][]resource.Item, maxResults int, shuffle func(n int, swap func(i, j int))) []resource.Item {
	active := make([][]resource.Item, 0, len(lists))
	for _, l := range lists {
		if len(l) > 0 {
			active = append(active, l)
		}
	}
	out := make([]resource.Item, 0, maxResults)
	if len(active) == 0 || maxResults <= 0 {
		return out
	}

	if shuffle != nil {
		shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
	}

	cursors := make([]int, len(active))
	seen := make(map[string]struct{})

	for len(active) > 0 && len(out) < maxResults {
		for i := 0; i < len(active) && len(out) < maxResults; {
			item := active[i][cursors[i]]
			cursors[i]++

			if key, ok := item.DedupKey(); !ok {
				out = append(out, item)
			} else if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, item)
			}

			if cursors[i] >= len(active[i]) {
				active = append(active[:i], active[i+1:]...)
				cursors = append(cursors[:i], cursors[i+1:]...)
				continue
			}
			i++
		}
	}
	return out
}
