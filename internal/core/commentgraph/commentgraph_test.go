package commentgraph

import (
	"testing"
	"time"

	perr "changeflow/internal/platform/errors"
	kit "changeflow/internal/platform/testkit"
)

func ptr(b bool) *bool { return &b }

func human(uuid, parent string, sec int, resolved bool) Comment {
	return Comment{
		UUID:       uuid,
		ParentUUID: parent,
		WrittenOn:  kit.At(time.Duration(sec) * time.Second),
		Human:      true,
		Resolved:   ptr(resolved),
	}
}

func robot(uuid, parent string, sec int) Comment {
	return Comment{UUID: uuid, ParentUUID: parent, WrittenOn: kit.At(time.Duration(sec) * time.Second)}
}

func uuids(cs []Comment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.UUID
	}
	return out
}

func TestBuildRootsAndChildren(t *testing.T) {
	t.Parallel()

	in := []Comment{
		robot("r", "", 0),
		robot("x", "r", 2),
		robot("y", "r", 1),
		robot("z", "y", 3),
		robot("orphan", "gone", 4),
	}
	g, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	kit.MustEqualSlice(t, uuids(g.Roots), []string{"r", "orphan"})
	kit.MustEqualSlice(t, uuids(g.Children["r"]), []string{"x", "y"})
	kit.MustEqualSlice(t, uuids(g.Children["y"]), []string{"z"})
	if _, ok := g.Children["gone"]; ok {
		t.Fatalf("dangling parent should not get a children entry")
	}
}

func TestBuildRejectsDuplicateUUID(t *testing.T) {
	t.Parallel()

	_, err := Build([]Comment{robot("a", "", 0), robot("a", "", 1)})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("duplicate uuid = %v, want invalid_argument", err)
	}
	if e, _ := perr.As(err); e.Field() != "uuid" {
		t.Fatalf("field = %q, want uuid", e.Field())
	}
}

func TestFlattenOrdersByTimeThenUUID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []Comment
		want []string
	}{
		{
			name: "siblings by time",
			in:   []Comment{robot("r", "", 0), robot("x", "r", 2), robot("y", "r", 1)},
			want: []string{"r", "y", "x"},
		},
		{
			name: "equal time by uuid",
			in:   []Comment{robot("r", "", 0), robot("bbb", "r", 5), robot("aaa", "r", 5)},
			want: []string{"r", "aaa", "bbb"},
		},
		{
			// a grandchild written before an uncle surfaces first
			name: "global merge across depth",
			in: []Comment{
				robot("r", "", 0),
				robot("a", "r", 1),
				robot("b", "r", 10),
				robot("a1", "a", 5),
				robot("a1x", "a1", 7),
				robot("b1", "b", 11),
			},
			want: []string{"r", "a", "a1", "a1x", "b", "b1"},
		},
		{
			// the queue only learns about children once the parent is popped
			name: "child older than parent still follows it",
			in:   []Comment{robot("r", "", 5), robot("c", "r", 1), robot("d", "r", 6)},
			want: []string{"r", "c", "d"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Build(tc.in)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(g.Roots) != 1 {
				t.Fatalf("roots = %v", uuids(g.Roots))
			}
			th, err := Flatten(g.Roots[0], g.Children)
			if err != nil {
				t.Fatalf("Flatten: %v", err)
			}
			kit.MustEqualSlice(t, uuids(th.Comments()), tc.want)
			if th.Root().UUID != "r" {
				t.Fatalf("Root = %q", th.Root().UUID)
			}
		})
	}
}

func TestNewThreadEmpty(t *testing.T) {
	t.Parallel()

	if _, err := NewThread(nil); !perr.IsCode(err, perr.ErrorCodeInvalidState) {
		t.Fatalf("NewThread(nil) = %v, want invalid_state", err)
	}
}

func TestUnresolved(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []Comment
		want bool
	}{
		{"last human unresolved", []Comment{human("a", "", 0, true), human("b", "a", 1, false)}, true},
		{"last human resolved", []Comment{human("a", "", 0, false), human("b", "a", 1, true)}, false},
		{"robots after human ignored", []Comment{human("a", "", 0, false), robot("b", "a", 1)}, true},
		{"no humans", []Comment{robot("a", "", 0), robot("b", "a", 1)}, false},
		{"nil flag reads resolved", []Comment{{UUID: "a", Human: true, WrittenOn: kit.At(0)}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th, err := NewThread(tc.in)
			if err != nil {
				t.Fatalf("NewThread: %v", err)
			}
			if got := th.Unresolved(); got != tc.want {
				t.Fatalf("Unresolved = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCommentsReturnsCopy(t *testing.T) {
	t.Parallel()

	th, _ := NewThread([]Comment{robot("a", "", 0)})
	cs := th.Comments()
	cs[0].UUID = "mutated"
	if th.Root().UUID != "a" {
		t.Fatalf("Comments must not alias thread storage")
	}
}

func TestAuthors(t *testing.T) {
	t.Parallel()

	a := human("a", "", 0, true)
	a.Author = 7
	b := human("b", "a", 1, true)
	b.Author = 9
	c := human("c", "b", 2, true)
	c.Author = 7
	bot := robot("d", "c", 3)
	bot.Author = 100

	th, _ := NewThread([]Comment{a, b, c, bot})
	kit.MustEqualSlice(t, th.Authors(), []int64{7, 9})
}
