package commentgraph

import (
	perr "changeflow/internal/platform/errors"
)

// Graph is the root/children split of one comment collection
type Graph struct {
	// Roots are comments whose parent is absent or not in the collection
	Roots []Comment
	// Children maps a parent uuid to its direct replies, in input order
	Children map[string][]Comment
}

// Build groups comments into roots and replies
// A reply whose parent is not part of comments is promoted to a root so
// every comment lands in exactly one thread. Duplicate uuids are rejected
func Build(comments []Comment) (Graph, error) {
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if _, dup := seen[c.UUID]; dup {
			return Graph{}, perr.WithField(perr.InvalidArgf("duplicate comment uuid %q", c.UUID), "uuid")
		}
		seen[c.UUID] = struct{}{}
	}

	g := Graph{Children: make(map[string][]Comment)}
	for _, c := range comments {
		if c.ParentUUID == "" {
			g.Roots = append(g.Roots, c)
			continue
		}
		if _, ok := seen[c.ParentUUID]; !ok {
			g.Roots = append(g.Roots, c)
			continue
		}
		g.Children[c.ParentUUID] = append(g.Children[c.ParentUUID], c)
	}
	return g, nil
}
