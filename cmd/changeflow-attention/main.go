package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"changeflow/internal/core/attention"
	"changeflow/internal/core/version"
	"changeflow/internal/modkit"
	"changeflow/internal/modkit/module"
	"changeflow/internal/modkit/repokit"
	"changeflow/internal/platform/config"
	perr "changeflow/internal/platform/errors"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store"
	"changeflow/internal/platform/validate"

	attmod "changeflow/internal/services/attention/module"
	cmod "changeflow/internal/services/comments/module"
	replydom "changeflow/internal/services/reply/domain"
	replymod "changeflow/internal/services/reply/module"
)

func main() { os.Exit(run()) }

// run returns the exit code so deferred cleanup runs before the process exits
func run() int {
	var (
		change  = flag.Int64("change", 0, "change id")
		ops     = flag.String("op", "", "comma separated ops run in one transaction: add,remove,remove-all,freeze")
		account = flag.Int64("account", 0, "account id for add/remove")
		reason  = flag.String("reason", "", "reason recorded with every update")
		audit   = flag.Bool("audit", false, "write a timeline message for removals")
		reply   = flag.String("reply", "", "path to a reply JSON document (- for stdin); replaces -op")
		migrate = flag.Bool("migrate", false, "apply schema migrations first")
		showVer = flag.Bool("version", false, "print build info and exit")
	)
	flag.Parse()

	if *showVer {
		_ = json.NewEncoder(os.Stdout).Encode(version.Info("changeflow-attention"))
		return 0
	}

	if *reply == "" && (*change <= 0 || *ops == "") {
		log.Print("-change and -op are required unless -reply is set")
		return 2
	}

	root := config.New()
	l := logger.Get()
	ctx := logger.WithRequest(context.Background(), "cli")

	st, err := store.Open(ctx, store.Config{
		AppName: "changeflow-attention",
		PG:      store.PGFromConf(root.Prefix("SERVICE_PGSQL_")),
	}, store.WithLogger(*l))
	if err != nil {
		return fail(l, os.Stderr, "store.Open failed", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if err := repokit.Guard(ctx, "postgres", st, 5*time.Second); err != nil {
		return fail(l, os.Stderr, "dependency not ready", err)
	}

	deps := modkit.DepsFrom(st, root, *l)
	am := attmod.New(deps)
	cm := cmod.New(deps)
	rm := replymod.New(deps, replymod.WithDepsModules(cm, am))
	module.Publish(am, cm, rm)

	if *migrate {
		if err := modkit.MigrateAll(ctx, cm, am, rm); err != nil {
			return fail(l, os.Stderr, "migrations failed", err)
		}
	}

	ap := module.MustPublished[attmod.Ports](am.Name())

	changeID := *change
	if *reply != "" {
		in, err := readReply(*reply)
		if err != nil {
			return fail(l, os.Stderr, "bad -reply", err)
		}
		res, err := module.MustPublished[replymod.Ports](rm.Name()).Reply.Reply(ctx, in)
		if err != nil {
			return fail(l, os.Stderr, "reply failed", err)
		}
		if err := emit(os.Stdout, res); err != nil {
			return fail(l, os.Stderr, "encode", err)
		}
		changeID = in.ChangeID
	} else {
		planned, err := parseOps(*ops, attention.AccountID(*account), *reason, *audit)
		if err != nil {
			return fail(l, os.Stderr, "bad -op", err)
		}
		res, err := ap.Writer.Apply(ctx, changeID, planned...)
		if err != nil {
			return fail(l, os.Stderr, "attention update failed", err)
		}
		if err := emit(os.Stdout, res); err != nil {
			return fail(l, os.Stderr, "encode", err)
		}
	}

	set, err := ap.Query.EffectiveSet(ctx, changeID)
	if err != nil {
		return fail(l, os.Stderr, "read effective set failed", err)
	}
	if err := emit(os.Stdout, map[string]any{"change_id": changeID, "attention_set": set}); err != nil {
		return fail(l, os.Stderr, "encode", err)
	}
	return 0
}

func parseOps(s string, account attention.AccountID, reason string, audit bool) ([]attention.Op, error) {
	var out []attention.Op
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "add":
			out = append(out, attention.Add(account, reason))
		case "remove":
			out = append(out, attention.Remove(account, reason, audit))
		case "remove-all":
			out = append(out, attention.RemoveAll(reason))
		case "freeze":
			out = append(out, attention.Freeze())
		default:
			return nil, perr.InvalidArgf("unknown op %q", name)
		}
	}
	return out, nil
}

func readReply(path string) (replydom.Input, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return replydom.Input{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open %s", path)
		}
		defer f.Close()
	}
	return validate.DecodeJSON[replydom.Input](f)
}

// fail logs err, prints its wire form to w and returns the exit code
func fail(l *logger.Logger, w io.Writer, msg string, err error) int {
	ev := l.Error()
	if e, ok := perr.As(err); ok {
		ev = ev.Object("error", e)
	} else {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
	_ = json.NewEncoder(w).Encode(perr.WireFrom(err))
	return 1
}

func emit(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
