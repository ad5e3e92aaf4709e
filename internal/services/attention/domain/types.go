// Package domain defines the types and interfaces for the attention service
package domain

import (
	"time"

	"changeflow/internal/core/attention"
)

// ChangeUpdate is one committed transaction that modified a change
// Frozen records that attention updates were stopped on purpose
type ChangeUpdate struct {
	ID        int64
	ChangeID  int64
	Frozen    bool
	CreatedAt time.Time
}

// Update is a durable attention set event
type Update struct {
	ID             int64
	ChangeID       int64
	ChangeUpdateID int64
	Seq            int
	Account        attention.AccountID
	Op             attention.Operation
	Reason         string
	CreatedAt      time.Time
}

// Message is an entry of a change's message timeline
type Message struct {
	ID        int64
	ChangeID  int64
	Text      string
	CreatedAt time.Time
}

// Result describes a committed attention transaction
type Result struct {
	ChangeID int64
	// Modified is false when no operation changed anything; nothing was written
	Modified       bool
	Frozen         bool
	ChangeUpdateID int64
	Events         []attention.Event
	Attempts       int
}
