package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"changeflow/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"select 1", "select 1"},
		{"  select   1  ", "select 1"},
		{"SELECT\t*\nFROM\r\tattention_set_updates WHERE  change_id =  $1", "SELECT * FROM attention_set_updates WHERE change_id = $1"},
		{"", ""},
	}
	for i, c := range cases {
		if got := compact(c.in); got != c.want {
			t.Fatalf("case %d: compact(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}

type logLine struct {
	Level     string  `json:"level"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Slow      bool    `json:"slow"`
	SQL       string  `json:"sql"`
	Args      []any   `json:"args"`
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	Component string  `json:"component"`
	ChangeID  int64   `json:"change_id"`
}

func emitOne(t *testing.T, ctx context.Context, ev QueryEvent) logLine {
	t.Helper()
	var buf bytes.Buffer
	Tracer(zerolog.New(&buf)).OnQuery(ctx, ev)

	var line logLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal log: %v\nraw=%s", err, buf.String())
	}
	return line
}

func TestTracerLevels(t *testing.T) {
	t.Parallel()

	ev := QueryEvent{
		SQL:       "SELECT  account_id \n FROM  attention_set_updates",
		Args:      []any{1, "two"},
		ElapsedUS: 12345,
	}

	line := emitOne(t, context.Background(), ev)
	if line.Level != "info" || line.Slow || line.Message != "pg query" || line.Component != "pg" {
		t.Fatalf("info line mismatch: %+v", line)
	}
	if math.Abs(line.ElapsedMS-12.345) > 0.0005 {
		t.Fatalf("elapsed_ms = %v", line.ElapsedMS)
	}
	if line.SQL != "SELECT account_id FROM attention_set_updates" {
		t.Fatalf("sql not compacted: %q", line.SQL)
	}
	if len(line.Args) != 2 || line.Args[1] != "two" {
		t.Fatalf("args = %#v", line.Args)
	}

	ev.Slow = true
	if line = emitOne(t, context.Background(), ev); line.Level != "warn" || !line.Slow {
		t.Fatalf("slow line mismatch: %+v", line)
	}

	ev.Err = errors.New("boom")
	ctx := logger.WithChange(context.Background(), 42)
	line = emitOne(t, ctx, ev)
	if line.Level != "error" || line.Error != "boom" || line.ChangeID != 42 {
		t.Fatalf("error line mismatch: %+v", line)
	}
}
