package service

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"changeflow/internal/core/commentgraph"
	"changeflow/internal/modkit/repokit"
	perr "changeflow/internal/platform/errors"
	kit "changeflow/internal/platform/testkit"
	"changeflow/internal/services/comments/domain"
	"changeflow/internal/services/comments/repo"

	"github.com/google/uuid"
)

type memComments struct {
	byChange map[int64][]commentgraph.Comment
	limits   []int
}

func (m *memComments) ListByChange(_ context.Context, changeID int64, limit int) ([]commentgraph.Comment, error) {
	m.limits = append(m.limits, limit)
	rows := slices.Clone(m.byChange[changeID])
	slices.SortFunc(rows, func(a, b commentgraph.Comment) int {
		if c := a.WrittenOn.Compare(b.WrittenOn); c != 0 {
			return c
		}
		return strings.Compare(a.UUID, b.UUID)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memComments) Insert(_ context.Context, changeID int64, c commentgraph.Comment) (commentgraph.Comment, error) {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	for _, x := range m.byChange[changeID] {
		if x.UUID == c.UUID {
			return commentgraph.Comment{}, perr.DuplicateKeyf("comment %s already exists", c.UUID)
		}
	}
	m.byChange[changeID] = append(m.byChange[changeID], c)
	return c, nil
}

type passTx struct {
	repokit.TxRunner
	calls int
}

func (p *passTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	p.calls++
	return fn(nil)
}

func newSvc(limit int) (*Service, *memComments, *passTx) {
	m := &memComments{byChange: map[int64][]commentgraph.Comment{}}
	tx := &passTx{}
	svc := New(tx, repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return m }), Config{HardLimit: limit})
	svc.now = func() time.Time { return kit.Epoch }
	return svc, m, tx
}

func ptr(b bool) *bool { return &b }

func TestPost_NormalizesAndDefaults(t *testing.T) {
	t.Parallel()

	svc, m, _ := newSvc(0)
	c, err := svc.Post(context.Background(), domain.NewComment{
		ChangeID: 3,
		Author:   7,
		Human:    true,
		Resolved: ptr(false),
		Message:  "  looks off\r\nhere   \n\n",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := uuid.Parse(c.UUID); err != nil {
		t.Fatalf("assigned uuid %q: %v", c.UUID, err)
	}
	if c.Message != "  looks off\nhere" {
		t.Fatalf("message = %q", c.Message)
	}
	if !c.WrittenOn.Equal(kit.Epoch) {
		t.Fatalf("written_on = %v", c.WrittenOn)
	}
	if len(m.byChange[3]) != 1 || svc.Cfg.HardLimit != 10000 {
		t.Fatalf("stored=%d limit=%d", len(m.byChange[3]), svc.Cfg.HardLimit)
	}
}

func TestPost_Validation(t *testing.T) {
	t.Parallel()

	svc, _, tx := newSvc(0)
	id := uuid.NewString()
	cases := []struct {
		name  string
		in    domain.NewComment
		field string
	}{
		{"no change", domain.NewComment{Author: 1, Message: "x"}, "change_id"},
		{"no author", domain.NewComment{ChangeID: 1, Message: "x"}, "author"},
		{"blank", domain.NewComment{ChangeID: 1, Author: 1, Message: " \t "}, "message"},
		{"format only", domain.NewComment{ChangeID: 1, Author: 1, Message: "\u200b\u200d"}, "message"},
		{"bad uuid", domain.NewComment{ChangeID: 1, Author: 1, Message: "x", UUID: "nope"}, "uuid"},
		{"self parent", domain.NewComment{ChangeID: 1, Author: 1, Message: "x", UUID: id, ParentUUID: id}, "parent_uuid"},
	}
	for _, c := range cases {
		_, err := svc.Post(context.Background(), c.in)
		e, ok := perr.As(err)
		if !ok {
			t.Fatalf("%s: expected a project error, got %v", c.name, err)
		}
		if e.Code() != perr.ErrorCodeInvalidArgument || e.Field() != c.field {
			t.Fatalf("%s: err = %v (field %q)", c.name, err, e.Field())
		}
	}
	if tx.calls != 0 {
		t.Fatalf("invalid input reached the database %d times", tx.calls)
	}
}

func TestPost_DuplicateUUID(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(0)
	id := uuid.NewString()
	in := domain.NewComment{ChangeID: 1, Author: 1, Message: "x", UUID: id}
	if _, err := svc.Post(context.Background(), in); err != nil {
		t.Fatalf("first Post: %v", err)
	}
	if _, err := svc.Post(context.Background(), in); !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("second Post = %v", err)
	}
}

func seed(m *memComments, changeID int64, cs ...commentgraph.Comment) {
	m.byChange[changeID] = append(m.byChange[changeID], cs...)
}

func TestThreads_OrderAndDanglingParent(t *testing.T) {
	t.Parallel()

	svc, m, _ := newSvc(0)
	seed(m, 1,
		commentgraph.Comment{UUID: "x", ParentUUID: "r", WrittenOn: kit.At(2 * time.Minute), Human: true},
		commentgraph.Comment{UUID: "r", WrittenOn: kit.Epoch, Human: true},
		commentgraph.Comment{UUID: "y", ParentUUID: "r", WrittenOn: kit.At(time.Minute), Human: true, Resolved: ptr(false)},
		commentgraph.Comment{UUID: "d", ParentUUID: "gone", WrittenOn: kit.At(-time.Minute), Human: true},
	)

	threads, err := svc.Threads(context.Background(), 1)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("threads = %d", len(threads))
	}
	if threads[0].Root().UUID != "d" || threads[1].Root().UUID != "r" {
		t.Fatalf("roots = %s, %s", threads[0].Root().UUID, threads[1].Root().UUID)
	}
	var got []string
	for _, c := range threads[1].Comments() {
		got = append(got, c.UUID)
	}
	kit.MustEqualSlice(t, got, []string{"r", "y", "x"})
	// x has no resolved flag and reads as resolved
	if threads[1].Unresolved() {
		t.Fatalf("thread r should be resolved")
	}

	views := domain.View(threads)
	if views[1].Root != "r" || len(views[1].Comments) != 3 || views[0].Unresolved {
		t.Fatalf("views = %+v", views)
	}
}

func TestThreads_HardLimit(t *testing.T) {
	t.Parallel()

	svc, m, _ := newSvc(2)
	seed(m, 1,
		commentgraph.Comment{UUID: "a", WrittenOn: kit.Epoch},
		commentgraph.Comment{UUID: "b", WrittenOn: kit.Epoch},
	)
	if _, err := svc.Threads(context.Background(), 1); err != nil {
		t.Fatalf("at limit: %v", err)
	}
	seed(m, 1, commentgraph.Comment{UUID: "c", WrittenOn: kit.Epoch})
	if _, err := svc.Threads(context.Background(), 1); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("over limit = %v", err)
	}
	kit.MustEqualSlice(t, m.limits, []int{3, 3})

	if _, err := svc.Threads(context.Background(), 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("change 0 = %v", err)
	}
}

func TestThreads_CycleIsInvalidArgument(t *testing.T) {
	t.Parallel()

	svc, m, _ := newSvc(0)
	seed(m, 1,
		commentgraph.Comment{UUID: "a", ParentUUID: "b", WrittenOn: kit.Epoch},
		commentgraph.Comment{UUID: "b", ParentUUID: "a", WrittenOn: kit.Epoch},
	)
	_, err := svc.Threads(context.Background(), 1)
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeInvalidArgument || e.Op() != "comments.threads" {
		t.Fatalf("cycle = %v", err)
	}
}

func TestRepliedThreads(t *testing.T) {
	t.Parallel()

	svc, m, _ := newSvc(0)
	seed(m, 1,
		commentgraph.Comment{UUID: "r1", WrittenOn: kit.Epoch},
		commentgraph.Comment{UUID: "r2", WrittenOn: kit.At(time.Second)},
		commentgraph.Comment{UUID: "c1", ParentUUID: "r2", WrittenOn: kit.At(time.Hour)},
	)
	got, err := svc.RepliedThreads(context.Background(), 1, []string{"c1", "unknown"})
	if err != nil {
		t.Fatalf("RepliedThreads: %v", err)
	}
	if len(got) != 1 || got[0].Root().UUID != "r2" {
		t.Fatalf("replied = %+v", got)
	}
	if got, _ := svc.RepliedThreads(context.Background(), 1, nil); got != nil {
		t.Fatalf("no uuids should give no threads")
	}
}

func TestNoDatabase(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, Config{})
	if _, err := svc.Comments(context.Background(), 1); !perr.IsCode(err, perr.ErrorCodeInvalidState) {
		t.Fatalf("Comments = %v", err)
	}
	_, err := svc.Post(context.Background(), domain.NewComment{ChangeID: 1, Author: 1, Message: "x"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidState) {
		t.Fatalf("Post = %v", err)
	}
}
