// Package domain defines the types and interfaces for the reply service
package domain

import (
	"context"

	"changeflow/internal/core/commentgraph"
	attdom "changeflow/internal/services/attention/domain"
	cdom "changeflow/internal/services/comments/domain"
)

// Status is the lifecycle state of a change
type Status string

const (
	StatusNew       Status = "NEW"
	StatusMerged    Status = "MERGED"
	StatusAbandoned Status = "ABANDONED"
)

// Closed reports whether the change is merged or abandoned
func (s Status) Closed() bool { return s == StatusMerged || s == StatusAbandoned }

// Change is the state of the change a reply is posted on
type Change struct {
	Owner int64 `json:"owner" validate:"gt=0"`
	// Uploader of the current patch set; zero means the owner
	Uploader       int64   `json:"uploader" validate:"omitempty,gt=0"`
	Status         Status  `json:"status" validate:"omitempty,oneof=NEW MERGED ABANDONED"`
	WorkInProgress bool    `json:"work_in_progress"`
	Reviewers      []int64 `json:"reviewers" validate:"dive,gt=0"`
	// HasCodeReview is false when the project defines no Code-Review label
	HasCodeReview bool `json:"has_code_review"`
	// MaxCodeReviewApprovers voted the maximum Code-Review value on the current patch set
	MaxCodeReviewApprovers []int64 `json:"max_code_review_approvers" validate:"dive,gt=0"`
}

// UploaderOrOwner returns the current patch set uploader
func (c Change) UploaderOrOwner() int64 {
	if c.Uploader == 0 {
		return c.Owner
	}
	return c.Uploader
}

// AttentionInput is a manual attention set update
type AttentionInput struct {
	Account int64  `json:"account" validate:"gt=0"`
	Reason  string `json:"reason" validate:"notblank,max=1024"`
}

// CommentInput is a comment posted with the reply
type CommentInput struct {
	UUID       string `json:"uuid" validate:"omitempty,uuid"`
	ParentUUID string `json:"parent_uuid" validate:"omitempty,uuid"`
	Message    string `json:"message" validate:"notblank,max=16384"`
	Unresolved *bool  `json:"unresolved"`
}

// Input is one reply on a change
type Input struct {
	ChangeID int64  `json:"change_id" validate:"gt=0"`
	Actor    int64  `json:"actor" validate:"gt=0"`
	Change   Change `json:"change"`
	Message  string `json:"message" validate:"max=65536"`
	// Votes maps label names to the values applied on the current patch set
	Votes map[string]int `json:"votes"`
	// VotesNotCopied is set when votes applied on an outdated patch set did not
	// carry over to the current one
	VotesNotCopied         bool             `json:"votes_not_copied"`
	AddToAttentionSet      []AttentionInput `json:"add_to_attention_set" validate:"dive"`
	RemoveFromAttentionSet []AttentionInput `json:"remove_from_attention_set" validate:"dive"`
	IgnoreAutomaticRules   bool             `json:"ignore_automatic_attention_set_rules"`
	Ready                  bool             `json:"ready"`
	WorkInProgress         bool             `json:"work_in_progress"`
	Comments               []CommentInput   `json:"comments" validate:"dive"`
}

// Result is the outcome of a reply
type Result struct {
	Comments  []commentgraph.Comment `json:"comments"`
	Attention attdom.Result          `json:"attention"`
}

// ReplyPort posts replies
type ReplyPort interface {
	Reply(ctx context.Context, in Input) (Result, error)
}

// Deps are the ports injected into the reply module
type Deps struct {
	Comments  cdom.WriterPort   // required
	Threads   cdom.QueryPort    // required
	Attention attdom.WriterPort // required
}
