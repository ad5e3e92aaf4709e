// Package attention plans attention-set changes within one change transaction
//
// A Planner collects the ADD/REMOVE events proposed by the operations of a
// single transaction. Freeze vetoes every later proposal in that transaction;
// events planned before the freeze keep effect. A planner is used by one
// goroutine and discarded when the transaction ends
package attention

import (
	"strconv"

	"changeflow/internal/core/normalize"
	perr "changeflow/internal/platform/errors"
)

// AccountID identifies a user account
type AccountID int64

func (a AccountID) String() string { return strconv.FormatInt(int64(a), 10) }

// Operation is the direction of an attention event
type Operation string

// Operations stored in the durable log
const (
	OpAdd    Operation = "ADD"
	OpRemove Operation = "REMOVE"
)

// Valid reports whether op is a known operation
func (op Operation) Valid() bool { return op == OpAdd || op == OpRemove }

// Event is a proposed, not yet durable, attention set change
type Event struct {
	Account AccountID `json:"account"`
	Op      Operation `json:"op"`
	Reason  string    `json:"reason"`
}

// Planner accumulates events for one transaction
type Planner struct {
	events []Event
	vetoed bool
}

// NewPlanner returns an empty, unfrozen planner
func NewPlanner() *Planner { return &Planner{} }

// PlanUpdate queues an event unless the planner is frozen
// A blank reason fails with InvalidArgument even when frozen; a frozen
// planner otherwise ignores the call and returns nil
func (p *Planner) PlanUpdate(account AccountID, op Operation, reason string) error {
	r, err := CheckReason(reason)
	if err != nil {
		return err
	}
	if !op.Valid() {
		return perr.WithField(perr.InvalidArgf("unknown attention operation %q", op), "op")
	}
	if p.vetoed {
		return nil
	}
	p.events = append(p.events, Event{Account: account, Op: op, Reason: r})
	return nil
}

// Freeze vetoes all later PlanUpdate calls; idempotent
func (p *Planner) Freeze() { p.vetoed = true }

// Vetoed reports whether Freeze was called
func (p *Planner) Vetoed() bool { return p.vetoed }

// Events returns the planned events in call order
func (p *Planner) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// CheckReason normalizes reason and rejects it when blank
// A reason made only of whitespace and format runes such as ZWSP or BOM is blank
func CheckReason(reason string) (string, error) {
	r := normalize.Reason(reason)
	if r == "" {
		return "", perr.WithField(perr.InvalidArgf("attention set reason must not be empty"), "reason")
	}
	return r, nil
}
