package service

import (
	"slices"

	"changeflow/internal/core/attention"
	"changeflow/internal/core/commentgraph"
	"changeflow/internal/core/normalize"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/services/reply/domain"
)

// Reasons recorded by the automatic reply rules
const (
	ReasonRobotVotedNegatively = "A robot voted negatively on a label"
	ReasonVotesNotCopied       = "Some votes were not copied to the current patch set"
	ReasonRemovedOnReply       = "removed on reply"
	ReasonNewThreadOnClosed    = "A new comment thread was created"
	ReasonSomeoneElseReplied   = "Someone else replied on the change"
	ReasonRepliedOnComment     = "Someone else replied on a comment you posted"
)

// Rules turns a reply into attention operations
type Rules struct {
	serviceUsers map[int64]struct{}
}

// NewRules builds Rules; service users are bots that skip most automatic rules
func NewRules(serviceUsers ...int64) Rules {
	su := make(map[int64]struct{}, len(serviceUsers))
	for _, id := range serviceUsers {
		su[id] = struct{}{}
	}
	return Rules{serviceUsers: su}
}

// IsServiceUser reports whether account is a configured service user
func (r Rules) IsServiceUser(account int64) bool {
	_, ok := r.serviceUsers[account]
	return ok
}

// Check rejects manual updates that touch the same account twice
func (r Rules) Check(in domain.Input) error {
	_, err := manualOps(in)
	return err
}

// Plan returns the attention operations of a reply in execution order
// posted holds the comments published by the reply, replied the threads
// that contain them
func (r Rules) Plan(in domain.Input, posted []commentgraph.Comment, replied []commentgraph.Thread) ([]attention.Op, error) {
	ops, err := manualOps(in)
	if err != nil {
		return nil, err
	}
	if in.IgnoreAutomaticRules {
		return append(ops, attention.Freeze()), nil
	}

	ready := (!in.Change.WorkInProgress && !in.WorkInProgress) || in.Ready
	service := r.IsServiceUser(in.Actor)
	if ready && service {
		return append(ops, robotOps(in)...), nil
	}

	ops = append(ops, currentUserOps(in)...)

	if in.Change.Status.Closed() {
		if slices.ContainsFunc(posted, func(c commentgraph.Comment) bool { return c.ParentUUID == "" }) {
			ops = append(ops, attention.Add(attention.AccountID(in.Change.Owner), ReasonNewThreadOnClosed))
		}
		return ops, nil
	}
	if !ready || service {
		return ops, nil
	}

	ops = append(ops, ownerAndUploaderOps(in, ready, len(posted) > 0)...)
	return append(ops, threadAuthorOps(in, replied)...), nil
}

// manualOps queues removals before additions
func manualOps(in domain.Input) ([]attention.Op, error) {
	seen := map[int64]struct{}{}
	claim := func(account int64, field string) error {
		if _, ok := seen[account]; ok {
			return perr.WithField(perr.InvalidArgf(
				"%d can not be added/removed twice, and can not be added and removed at the same time",
				account), field)
		}
		seen[account] = struct{}{}
		return nil
	}

	var ops []attention.Op
	for _, rm := range in.RemoveFromAttentionSet {
		if err := claim(rm.Account, "remove_from_attention_set"); err != nil {
			return nil, err
		}
		ops = append(ops, attention.Remove(attention.AccountID(rm.Account), rm.Reason, false))
	}
	for _, add := range in.AddToAttentionSet {
		if err := claim(add.Account, "add_to_attention_set"); err != nil {
			return nil, err
		}
		ops = append(ops, attention.Add(attention.AccountID(add.Account), add.Reason))
	}
	return ops, nil
}

// robotOps is the only rule service users trigger
func robotOps(in domain.Input) []attention.Op {
	if in.Change.Status.Closed() {
		return nil
	}
	negative := func() bool {
		for _, v := range in.Votes {
			if v < 0 {
				return true
			}
		}
		return false
	}
	owner := in.Change.Owner
	ops := []attention.Op{
		attention.Add(attention.AccountID(owner), ReasonRobotVotedNegatively, attention.WithCondition(negative)),
	}
	if up := in.Change.UploaderOrOwner(); up != owner {
		ops = append(ops, attention.Add(attention.AccountID(up), ReasonRobotVotedNegatively, attention.WithCondition(negative)))
	}
	return ops
}

// currentUserOps keeps the actor in the set only when votes were lost
func currentUserOps(in domain.Input) []attention.Op {
	actor := attention.AccountID(in.Actor)
	keep := func() bool { return in.VotesNotCopied }
	return []attention.Op{
		attention.Add(actor, ReasonVotesNotCopied, attention.WithCondition(keep)),
		attention.Remove(actor, ReasonRemovedOnReply, false, attention.WithCondition(func() bool { return !keep() })),
	}
}

func ownerAndUploaderOps(in domain.Input, ready, postedComments bool) []attention.Op {
	replied := func() bool {
		return len(in.Votes) > 0 ||
			!normalize.IsBlank(in.Message) ||
			(in.Change.WorkInProgress && ready) ||
			postedComments
	}

	var ops []attention.Op
	owner := in.Change.Owner
	if in.Actor != owner {
		ops = append(ops, attention.Add(attention.AccountID(owner), ReasonSomeoneElseReplied, attention.WithCondition(replied)))
	}
	if up := in.Change.UploaderOrOwner(); up != owner && up != in.Actor {
		ops = append(ops, attention.Add(attention.AccountID(up), ReasonSomeoneElseReplied, attention.WithCondition(replied)))
	}
	return ops
}

// threadAuthorOps adds reviewers whose threads received a reply
func threadAuthorOps(in domain.Input, replied []commentgraph.Thread) []attention.Op {
	ownerOrUploader := in.Actor == in.Change.Owner || in.Actor == in.Change.UploaderOrOwner()

	candidates := map[int64]struct{}{}
	for _, t := range replied {
		unresolved := t.Unresolved()
		if unresolved && !ownerOrUploader {
			continue
		}
		ignoreVotes := !in.Change.HasCodeReview || (unresolved && ownerOrUploader)
		for _, a := range t.Authors() {
			if a == in.Actor {
				continue
			}
			if !ignoreVotes && slices.Contains(in.Change.MaxCodeReviewApprovers, a) {
				continue
			}
			candidates[a] = struct{}{}
		}
	}

	var ops []attention.Op
	added := map[int64]struct{}{}
	for _, rv := range in.Change.Reviewers {
		if _, ok := candidates[rv]; !ok {
			continue
		}
		if _, dup := added[rv]; dup {
			continue
		}
		added[rv] = struct{}{}
		ops = append(ops, attention.Add(attention.AccountID(rv), ReasonRepliedOnComment))
	}
	return ops
}
