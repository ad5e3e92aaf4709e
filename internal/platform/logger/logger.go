// Package logger is the zerolog root logger plus change scoped context fields
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"changeflow/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type used everywhere
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level        string
	Format       string // json, anything else is console
	Service      string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through the raw config view, which does not log
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:        strings.ToLower(rc.Get("LEVEL", "info")),
		Format:       strings.ToLower(rc.Get("FORMAT", "console")),
		Service:      rc.Get("SERVICE", ""),
		WithCaller:   rc.GetBool("CALLER", false),
		SampleEvery:  rc.GetInt("SAMPLE_EVERY", 0),
		StaticFields: rc.GetMap("FIELDS"),
	}
}

var (
	initOnce sync.Once
	root     atomic.Pointer[Logger]
)

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Init builds the root logger; only the first call has an effect
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opt.Writer
		if out == nil {
			out = os.Stderr
		}
		if opt.Format != "json" {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		ctx := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok {
			ctx = ctx.Str("go_version", bi.GoVersion)
		}
		if opt.Service != "" {
			ctx = ctx.Str("service", opt.Service)
		}
		for k, v := range opt.StaticFields {
			ctx = ctx.Str(k, v)
		}
		if opt.WithCaller {
			ctx = ctx.Caller()
		}

		l := ctx.Logger()
		if opt.SampleEvery > 1 {
			l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}
		root.Store(&l)
	})
}

// parseLevel accepts zerolog level names plus "warning"; anything else is info
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// scope is what a context carries for log lines under it
type scope struct {
	request string
	change  int64
	actor   int64
}

type scopeKey struct{}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, fn func(*scope)) context.Context {
	s := scopeOf(ctx)
	fn(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithRequest tags ctx with an invocation id; empty ids are ignored
func WithRequest(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.request = id })
}

// WithChange tags ctx with the change being worked on; ids <= 0 are ignored
func WithChange(ctx context.Context, changeID int64) context.Context {
	if changeID <= 0 {
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.change = changeID })
}

// WithActor tags ctx with the acting account; ids <= 0 are ignored
func WithActor(ctx context.Context, accountID int64) context.Context {
	if accountID <= 0 {
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.actor = accountID })
}

// ChangeFrom returns the change set by WithChange
func ChangeFrom(ctx context.Context) (int64, bool) {
	id := scopeOf(ctx).change
	return id, id > 0
}

// C returns a child of the root logger carrying ctx's request, change and actor
func C(ctx context.Context) *Logger {
	s := scopeOf(ctx)
	b := Get().With()
	if s.request != "" {
		b = b.Str("request_id", s.request)
	}
	if s.change > 0 {
		b = b.Int64("change_id", s.change)
	}
	if s.actor > 0 {
		b = b.Int64("actor", s.actor)
	}
	l := b.Logger()
	return &l
}

// Named returns a child of the root logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
