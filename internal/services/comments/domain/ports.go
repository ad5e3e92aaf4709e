package domain

import (
	"context"

	"changeflow/internal/core/commentgraph"
)

// WriterPort publishes comments
type WriterPort interface {
	Post(ctx context.Context, in NewComment) (commentgraph.Comment, error)
}

// QueryPort reads comments and threads of a change
type QueryPort interface {
	Comments(ctx context.Context, changeID int64) ([]commentgraph.Comment, error)
	Threads(ctx context.Context, changeID int64) ([]commentgraph.Thread, error)
	// RepliedThreads returns the threads that contain any of the given comments
	RepliedThreads(ctx context.Context, changeID int64, uuids []string) ([]commentgraph.Thread, error)
}
