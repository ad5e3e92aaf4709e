package commentgraph

import (
	"slices"
	"sort"

	perr "changeflow/internal/platform/errors"
)

// ForComments builds every thread of a collection
// Threads come back ordered by their root in display order
func ForComments(comments []Comment) ([]Thread, error) {
	g, err := Build(comments)
	if err != nil {
		return nil, err
	}

	roots := slices.Clone(g.Roots)
	sort.Slice(roots, func(i, j int) bool { return less(roots[i], roots[j]) })

	threads := make([]Thread, 0, len(roots))
	covered := 0
	for _, r := range roots {
		th, err := Flatten(r, g.Children)
		if err != nil {
			return nil, err
		}
		covered += th.Len()
		threads = append(threads, th)
	}

	// only a parent cycle can leave comments unreached
	if covered != len(comments) {
		return nil, perr.InvalidArgf("%d comments form a parent cycle", len(comments)-covered)
	}
	return threads, nil
}

// ThreadsForChildren returns the threads holding any of the given comment uuids,
// keeping the order of threads
func ThreadsForChildren(threads []Thread, uuids []string) []Thread {
	if len(uuids) == 0 {
		return nil
	}
	var out []Thread
	for _, th := range threads {
		for _, u := range uuids {
			if th.Contains(u) {
				out = append(out, th)
				break
			}
		}
	}
	return out
}
