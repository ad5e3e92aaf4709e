package attention

import (
	"context"
	"fmt"
	"slices"

	perr "changeflow/internal/platform/errors"
)

// EffectiveSetReader returns the accounts currently in a change's attention set
type EffectiveSetReader interface {
	EffectiveSet(ctx context.Context, changeID int64) ([]AccountID, error)
}

// MessageWriter appends to a change's message timeline
type MessageWriter interface {
	AppendMessage(ctx context.Context, changeID int64, text string) error
}

// Tx is the per-transaction context handed to every Op
type Tx struct {
	ChangeID int64
	Planner  *Planner
	Set      EffectiveSetReader
	Messages MessageWriter
}

// Op is one attention operation run inside a change transaction
// modified reports whether the change must be recorded as updated
type Op interface {
	Update(ctx context.Context, tx *Tx) (modified bool, err error)
	Validate() error
	Name() string
}

// Condition gates an operation at execution time; nil means always
type Condition func() bool

// Option configures Add and Remove
type Option func(*gate)

// WithCondition runs the operation only when cond holds when it executes
func WithCondition(cond Condition) Option {
	return func(g *gate) { g.cond = cond }
}

type gate struct{ cond Condition }

func (g gate) open() bool { return g.cond == nil || g.cond() }

func newGate(opts []Option) gate {
	var g gate
	for _, o := range opts {
		o(&g)
	}
	return g
}

// AddOp puts an account into the attention set
type AddOp struct {
	Account AccountID
	Reason  string
	gate    gate
}

// Add builds an AddOp
func Add(account AccountID, reason string, opts ...Option) *AddOp {
	return &AddOp{Account: account, Reason: reason, gate: newGate(opts)}
}

// Name implements Op
func (o *AddOp) Name() string { return "attention.add" }

// Validate implements Op
func (o *AddOp) Validate() error {
	_, err := CheckReason(o.Reason)
	return perr.WithOp(err, o.Name())
}

// Update plans an ADD and reports modified even when the planner is frozen;
// the freeze is applied when the transaction is recorded
func (o *AddOp) Update(_ context.Context, tx *Tx) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if !o.gate.open() {
		return false, nil
	}
	if err := tx.Planner.PlanUpdate(o.Account, OpAdd, o.Reason); err != nil {
		return false, perr.WithOp(err, o.Name())
	}
	return true, nil
}

// RemoveOp takes an account out of the attention set
type RemoveOp struct {
	Account AccountID
	Reason  string
	// Audit writes a timeline message, also when the planner is frozen
	Audit bool
	gate  gate
}

// Remove builds a RemoveOp
func Remove(account AccountID, reason string, audit bool, opts ...Option) *RemoveOp {
	return &RemoveOp{Account: account, Reason: reason, Audit: audit, gate: newGate(opts)}
}

// Name implements Op
func (o *RemoveOp) Name() string { return "attention.remove" }

// Validate implements Op
func (o *RemoveOp) Validate() error {
	_, err := CheckReason(o.Reason)
	return perr.WithOp(err, o.Name())
}

// AuditText is the timeline message written for an audited removal
func AuditText(account AccountID) string {
	return fmt.Sprintf("Removed from attention set: %s", account)
}

// Update plans a REMOVE and writes the audit message when requested
func (o *RemoveOp) Update(ctx context.Context, tx *Tx) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if !o.gate.open() {
		return false, nil
	}
	if err := tx.Planner.PlanUpdate(o.Account, OpRemove, o.Reason); err != nil {
		return false, perr.WithOp(err, o.Name())
	}
	if o.Audit {
		if tx.Messages == nil {
			return false, perr.WithOp(perr.InvalidStatef("audit requested without a message writer"), o.Name())
		}
		if err := tx.Messages.AppendMessage(ctx, tx.ChangeID, AuditText(o.Account)); err != nil {
			return false, perr.WithOp(err, o.Name())
		}
	}
	return true, nil
}

// RemoveAllOp empties the attention set
type RemoveAllOp struct {
	Reason string
}

// RemoveAll builds a RemoveAllOp
func RemoveAll(reason string) *RemoveAllOp { return &RemoveAllOp{Reason: reason} }

// Name implements Op
func (o *RemoveAllOp) Name() string { return "attention.remove_all" }

// Validate implements Op
func (o *RemoveAllOp) Validate() error {
	_, err := CheckReason(o.Reason)
	return perr.WithOp(err, o.Name())
}

// Update removes every account of the effective set in ascending id order
// An empty set leaves the change unmodified
func (o *RemoveAllOp) Update(ctx context.Context, tx *Tx) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if tx.Set == nil {
		return false, perr.WithOp(perr.InvalidStatef("remove-all needs an effective set reader"), o.Name())
	}
	accounts, err := tx.Set.EffectiveSet(ctx, tx.ChangeID)
	if err != nil {
		return false, perr.WithOp(err, o.Name())
	}
	if len(accounts) == 0 {
		return false, nil
	}

	accounts = slices.Clone(accounts)
	slices.Sort(accounts)
	accounts = slices.Compact(accounts)

	modified := false
	for _, a := range accounts {
		m, err := Remove(a, o.Reason, false).Update(ctx, tx)
		if err != nil {
			return false, err
		}
		modified = modified || m
	}
	return modified, nil
}

// FreezeOp stops every later attention update in the transaction
type FreezeOp struct{}

// Freeze builds a FreezeOp
func Freeze() FreezeOp { return FreezeOp{} }

// Name implements Op
func (FreezeOp) Name() string { return "attention.freeze" }

// Validate implements Op
func (FreezeOp) Validate() error { return nil }

// Update vetoes the planner; always modified so the freeze itself is recorded
func (FreezeOp) Update(_ context.Context, tx *Tx) (bool, error) {
	tx.Planner.Freeze()
	return true, nil
}
