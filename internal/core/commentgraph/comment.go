// Package commentgraph rebuilds ordered discussion threads from the flat,
// parent-linked comment collection stored for a change
//
// Build splits the collection into roots and a children multimap; Flatten
// merges one root's whole subtree into a single sequence ordered by
// (WrittenOn, UUID). Both are pure and safe for concurrent use
package commentgraph

import (
	"time"
)

// Comment is one immutable published comment
type Comment struct {
	UUID string `json:"uuid"`
	// ParentUUID is empty for a top-level comment
	ParentUUID string    `json:"parent_uuid,omitempty"`
	WrittenOn  time.Time `json:"written_on"`
	Human      bool      `json:"human"`
	// Resolved is only meaningful on human comments; nil reads as resolved
	Resolved *bool  `json:"resolved,omitempty"`
	Author   int64  `json:"author,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Unresolved reports whether this comment leaves its thread open
func (c Comment) Unresolved() bool {
	return c.Resolved != nil && !*c.Resolved
}

// less is the display order: older first, uuid breaks ties
func less(a, b Comment) bool {
	if !a.WrittenOn.Equal(b.WrittenOn) {
		return a.WrittenOn.Before(b.WrittenOn)
	}
	return a.UUID < b.UUID
}
