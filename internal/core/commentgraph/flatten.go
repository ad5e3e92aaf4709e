package commentgraph

import (
	"container/heap"

	perr "changeflow/internal/platform/errors"
)

// queue is a min-heap of comments in display order
type queue []Comment

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return less(q[i], q[j]) }
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(Comment)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

// Flatten orders root and all of its descendants into one thread
//
// A single queue spans every branch, so a deep reply written earlier
// surfaces before a shallower sibling written later. This is not a
// level-by-level walk
func Flatten(root Comment, children map[string][]Comment) (Thread, error) {
	q := &queue{root}
	visited := map[string]struct{}{}
	var out []Comment
	for q.Len() > 0 {
		c := heap.Pop(q).(Comment)
		if _, ok := visited[c.UUID]; ok {
			continue
		}
		visited[c.UUID] = struct{}{}
		out = append(out, c)
		for _, child := range children[c.UUID] {
			heap.Push(q, child)
		}
	}
	return NewThread(out)
}

// Thread is an ordered, non-empty run of comments under one root
type Thread struct {
	comments []Comment
}

// NewThread wraps an already ordered comment sequence
func NewThread(comments []Comment) (Thread, error) {
	if len(comments) == 0 {
		return Thread{}, perr.InvalidStatef("comment thread must contain at least one comment")
	}
	return Thread{comments: comments}, nil
}

// Root returns the first comment of the thread
func (t Thread) Root() Comment { return t.comments[0] }

// Comments returns a copy of the ordered comments
func (t Thread) Comments() []Comment {
	out := make([]Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

// Len is the number of comments in the thread
func (t Thread) Len() int { return len(t.comments) }

// Unresolved takes the state of the last human comment; threads without
// human comments are resolved
func (t Thread) Unresolved() bool {
	for i := len(t.comments) - 1; i >= 0; i-- {
		if t.comments[i].Human {
			return t.comments[i].Unresolved()
		}
	}
	return false
}

// Authors returns the distinct authors of human comments in first-seen order
func (t Thread) Authors() []int64 {
	seen := map[int64]struct{}{}
	var out []int64
	for _, c := range t.comments {
		if !c.Human || c.Author == 0 {
			continue
		}
		if _, ok := seen[c.Author]; ok {
			continue
		}
		seen[c.Author] = struct{}{}
		out = append(out, c.Author)
	}
	return out
}

// Contains reports whether a comment with uuid is part of the thread
func (t Thread) Contains(uuid string) bool {
	for _, c := range t.comments {
		if c.UUID == uuid {
			return true
		}
	}
	return false
}
