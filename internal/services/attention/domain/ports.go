package domain

import (
	"context"

	"changeflow/internal/core/attention"
)

// WriterPort runs attention operations against one change
type WriterPort interface {
	Apply(ctx context.Context, changeID int64, ops ...attention.Op) (Result, error)
}

// QueryPort reads the durable attention log
type QueryPort interface {
	EffectiveSet(ctx context.Context, changeID int64) ([]attention.AccountID, error)
	History(ctx context.Context, changeID int64) ([]Update, error)
	Messages(ctx context.Context, changeID int64) ([]Message, error)
}

// Ports is the full surface of the attention service
type Ports interface {
	WriterPort
	QueryPort
}
