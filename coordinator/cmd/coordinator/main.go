package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"modfact/coordinator/internal/app"
	"modfact/coordinator/internal/cache"
	"modfact/coordinator/internal/dispatcher"
	"modfact/coordinator/internal/journal"
	"modfact/coordinator/internal/plattform"
	"modfact/pkg/styles"
)

// uint64Flag acepta solo enteros sin signo; un valor inválido aborta el parseo.
type uint64Flag struct{ v *uint64 }

func (f uint64Flag) String() string {
	if f.v == nil {
		return "0"
	}
	return strconv.FormatUint(*f.v, 10)
}

func (f uint64Flag) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", s)
	}
	*f.v = v
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var cfg app.Config
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.Var(uint64Flag{&cfg.K}, "k", "factorial argument (> 0)")
	fs.Var(uint64Flag{&cfg.Mod}, "mod", "modulus (> 0)")
	fs.StringVar(&cfg.ServersFile, "servers", "", "path to the servers file (host:port per line)")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", dispatcher.DefaultDialTimeout, "per-endpoint connect timeout")
	fs.DurationVar(&cfg.IOTimeout, "io-timeout", dispatcher.DefaultIOTimeout, "per-endpoint send/receive timeout (negative disables)")
	fs.BoolVar(&cfg.AllowPartial, "allow-partial", false, "exit 0 when only some servers answered")
	fs.BoolVar(&cfg.Verify, "verify", true, "recompute k! mod m sequentially on full success")
	fs.BoolVar(&cfg.StrictVerify, "strict-verify", false, "exit 1 when the sequential verification does not match")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}
	if cfg.K == 0 || cfg.Mod == 0 || cfg.ServersFile == "" {
		styles.PrintFS(styles.Error, "Using: %s --k 1000 --mod 5 --servers /path/to/file", os.Args[0])
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, closeJournal := openJournal(ctx)
	defer closeJournal()

	return app.Run(ctx, cfg, os.Stdout, rec)
}

// openJournal habilita los almacenes configurados por entorno.
func openJournal(ctx context.Context) (journal.Recorder, func()) {
	var (
		recs    journal.Multi
		closers []func()
	)

	if client := cache.NewRedisClient(); client != nil {
		recs = append(recs, journal.NewRedisRecorder(client))
		closers = append(closers, func() { _ = client.Close() })
	}

	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoSvc, err := plattform.NewClient(mctx)
	switch {
	case err == nil:
		recs = append(recs, journal.NewMongoRecorder(mongoSvc.Collection(journal.RunsCollection)))
		closers = append(closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoSvc.Disconnect(dctx)
		})
	case !errors.Is(err, plattform.ErrMissingMongoURI):
		log.Print(styles.SprintfS(styles.Warning, "[JOURNAL] MongoDB disabled: %v", err))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(recs) == 0 {
		return journal.Nop{}, closeAll
	}
	return recs, closeAll
}
