// Package repo provides the comment store on Postgres
package repo

import (
	"context"
	"embed"

	"changeflow/internal/core/commentgraph"
	"changeflow/internal/modkit/repokit"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/store"
	pstrings "changeflow/internal/platform/strings"
	ptime "changeflow/internal/platform/time"

	"github.com/google/uuid"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Migrate applies the comments schema
func Migrate(ctx context.Context, tx repokit.TxRunner) error {
	return store.Migrate(ctx, tx, "comments", migrations)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the comments repository
type Storage interface {
	// ListByChange returns up to limit comments in (written_on, uuid) order
	ListByChange(ctx context.Context, changeID int64, limit int) ([]commentgraph.Comment, error)
	// Insert stores c, assigning a uuid when empty and now() when WrittenOn is zero
	Insert(ctx context.Context, changeID int64, c commentgraph.Comment) (commentgraph.Comment, error)
}

// ListByChange implements Storage
func (s *pg) ListByChange(ctx context.Context, changeID int64, limit int) ([]commentgraph.Comment, error) {
	out, err := store.Many(ctx, s.q, scanComment, `
		SELECT uuid::text, COALESCE(parent_uuid::text, ''), written_on, human, resolved, author_id, message
		FROM comments
		WHERE change_id = $1
		ORDER BY written_on, uuid
		LIMIT $2`, changeID, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list comments of change %d", changeID)
	}
	return out, nil
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, changeID int64, c commentgraph.Comment) (commentgraph.Comment, error) {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	err := s.q.QueryRow(ctx, `
		INSERT INTO comments (uuid, change_id, parent_uuid, author_id, human, resolved, message, written_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8::timestamptz, now()))
		RETURNING written_on`,
		c.UUID, changeID, pstrings.SQLNull(c.ParentUUID), c.Author, c.Human, c.Resolved, c.Message, ptime.Ptr(c.WrittenOn),
	).Scan(&c.WrittenOn)
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return commentgraph.Comment{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeDuplicateKey, "comment %s already exists", c.UUID), "uuid")
		}
		return commentgraph.Comment{}, perr.FromPostgresf(err, "insert comment on change %d", changeID)
	}
	return c, nil
}

func scanComment(r store.Row) (commentgraph.Comment, error) {
	var c commentgraph.Comment
	err := r.Scan(&c.UUID, &c.ParentUUID, &c.WrittenOn, &c.Human, &c.Resolved, &c.Author, &c.Message)
	return c, err
}
