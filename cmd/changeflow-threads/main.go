package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"changeflow/internal/core/version"
	"changeflow/internal/modkit"
	"changeflow/internal/modkit/module"
	"changeflow/internal/modkit/repokit"
	"changeflow/internal/platform/config"
	"changeflow/internal/platform/logger"
	"changeflow/internal/platform/store"
	pstrings "changeflow/internal/platform/strings"

	cdom "changeflow/internal/services/comments/domain"
	cmod "changeflow/internal/services/comments/module"
)

func main() { os.Exit(run()) }

// run returns the exit code so the store is closed before the process exits
func run() int {
	var (
		change  = flag.Int64("change", 0, "change id")
		asJSON  = flag.Bool("json", false, "print threads as JSON")
		migrate = flag.Bool("migrate", false, "apply schema migrations first")
		showVer = flag.Bool("version", false, "print build info and exit")
	)
	flag.Parse()

	if *showVer {
		_ = json.NewEncoder(os.Stdout).Encode(version.Info("changeflow-threads"))
		return 0
	}

	if *change <= 0 {
		log.Print("-change is required")
		return 2
	}

	root := config.New()
	l := logger.Get()
	ctx := logger.WithChange(context.Background(), *change)

	st, err := store.Open(ctx, store.Config{
		AppName: "changeflow-threads",
		PG:      store.PGFromConf(root.Prefix("SERVICE_PGSQL_")),
	}, store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if err := repokit.Guard(ctx, "postgres", st, 5*time.Second); err != nil {
		l.Error().Err(err).Msg("dependency not ready")
		return 1
	}

	cm := cmod.New(modkit.DepsFrom(st, root, *l))
	module.Publish(cm)

	if *migrate {
		if err := modkit.MigrateAll(ctx, cm); err != nil {
			l.Error().Err(err).Msg("migrations failed")
			return 1
		}
	}

	threads, err := module.MustPublished[cmod.Ports](cm.Name()).Query.Threads(ctx, *change)
	if err != nil {
		l.Error().Err(err).Msg("read threads failed")
		return 1
	}
	views := cdom.View(threads)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			l.Error().Err(err).Msg("encode")
			return 1
		}
		return 0
	}

	for _, v := range views {
		state := "resolved"
		if v.Unresolved {
			state = "unresolved"
		}
		fmt.Printf("thread %s (%s, %d comments)\n", v.Root, state, len(v.Comments))
		for _, c := range v.Comments {
			fmt.Printf("  %s  %-8d %s\n", c.WrittenOn.Format("2006-01-02 15:04:05"), c.Author, pstrings.FirstLine(c.Message))
		}
	}
	return 0
}
