// Package domain defines the types and interfaces for the comments service
package domain

import (
	"time"

	"changeflow/internal/core/commentgraph"
)

// NewComment is a comment to publish on a change
type NewComment struct {
	ChangeID int64 `json:"change_id" validate:"gt=0"`
	// UUID is assigned on insert when empty
	UUID       string    `json:"uuid" validate:"omitempty,uuid"`
	ParentUUID string    `json:"parent_uuid" validate:"omitempty,uuid,nefield=UUID"`
	Author     int64     `json:"author" validate:"gt=0"`
	Human      bool      `json:"human"`
	Resolved   *bool     `json:"resolved"`
	Message    string    `json:"message" validate:"notblank,max=16384"`
	WrittenOn  time.Time `json:"written_on"`
}

// ThreadView is the presentable form of a thread
type ThreadView struct {
	Root       string                 `json:"root"`
	Unresolved bool                   `json:"unresolved"`
	Comments   []commentgraph.Comment `json:"comments"`
}

// View converts threads for output
func View(threads []commentgraph.Thread) []ThreadView {
	out := make([]ThreadView, 0, len(threads))
	for _, t := range threads {
		out = append(out, ThreadView{
			Root:       t.Root().UUID,
			Unresolved: t.Unresolved(),
			Comments:   t.Comments(),
		})
	}
	return out
}
