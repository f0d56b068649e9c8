package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"modfact/coordinator/internal/aggregate"
	"modfact/coordinator/internal/dispatcher"
	"modfact/coordinator/internal/journal"
	"modfact/coordinator/internal/partition"
	"modfact/coordinator/internal/report"
	"modfact/coordinator/internal/servers"
	"modfact/pkg/styles"
	"modfact/pkg/types"
)

const journalTimeout = 5 * time.Second

type Config struct {
	K           uint64
	Mod         uint64
	ServersFile string

	DialTimeout  time.Duration
	IOTimeout    time.Duration
	AllowPartial bool
	Verify       bool
	StrictVerify bool

	// Resolver reemplaza al resolver del sistema (tests).
	Resolver dispatcher.Resolver
}

// Validate comprueba los argumentos antes de tocar la red.
func (c Config) Validate() error {
	if c.K == 0 {
		return fmt.Errorf("%w: k must be > 0", types.ErrInvalidArgument)
	}
	if c.Mod == 0 {
		return fmt.Errorf("%w: mod must be > 0", types.ErrInvalidArgument)
	}
	if c.ServersFile == "" {
		return fmt.Errorf("%w: servers file is required", types.ErrInvalidArgument)
	}
	return nil
}

// Run ejecuta un ciclo completo partición → dispatch → agregación y devuelve el código de salida.
func Run(ctx context.Context, cfg Config, out io.Writer, rec journal.Recorder) int {
	if err := cfg.Validate(); err != nil {
		styles.FprintFS(out, styles.Error, "[COORD] %v", err)
		return 1
	}

	endpoints, skipped, err := servers.Load(cfg.ServersFile)
	for _, s := range skipped {
		styles.FprintFS(out, styles.Warning, "[COORD] Skipping server entry: %v", s)
	}
	if err != nil {
		styles.FprintFS(out, styles.Error, "[COORD] %v", err)
		return 1
	}
	styles.FprintFS(out, styles.Default, "[COORD] Found %d servers", len(endpoints))

	// cada endpoint necesita al menos un número
	if uint64(len(endpoints)) > cfg.K {
		styles.FprintFS(out, styles.Warning, "[COORD] %d servers for k=%d, using the first %d", len(endpoints), cfg.K, cfg.K)
		endpoints = endpoints[:cfg.K]
	}

	ranges, err := partition.Partition(cfg.K, len(endpoints))
	if err != nil {
		styles.FprintFS(out, styles.Error, "[COORD] %v", err)
		return 1
	}

	styles.FprintFS(out, styles.Default, "\n=== Distributing work ===")
	tasks := make([]types.Task, len(ranges))
	for i, r := range ranges {
		tasks[i] = types.Task{Range: r, Modulus: cfg.Mod}
		styles.FprintFS(out, styles.Default, "Server %d (%s): numbers %d to %d", i, endpoints[i], r.Begin, r.End)
	}

	styles.FprintFS(out, styles.Default, "\n=== Starting parallel execution ===")
	started := time.Now()
	d := dispatcher.New(dispatcher.Config{
		DialTimeout: cfg.DialTimeout,
		IOTimeout:   cfg.IOTimeout,
		Resolver:    cfg.Resolver,
		Out:         out,
	})
	results, err := d.Dispatch(ctx, endpoints, tasks)
	if err != nil {
		styles.FprintFS(out, styles.Error, "[COORD] %v", err)
		return 1
	}
	finished := time.Now()

	outcome := aggregate.Aggregate(results, cfg.Mod)
	code := report.Print(out, results, outcome, cfg.K, cfg.Mod, report.Options{
		AllowPartial:   cfg.AllowPartial,
		Verify:         cfg.Verify,
		FailOnMismatch: cfg.StrictVerify,
	})

	if rec != nil {
		run := journal.NewRun(cfg.K, cfg.Mod, tasks, results, outcome, report.Classify(outcome).String(), started, finished)
		jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
		defer cancel()
		if err := rec.Record(jctx, run); err != nil {
			styles.FprintFS(out, styles.Warning, "[JOURNAL] Could not record run %s: %v", run.ID, err)
		}
	}
	return code
}
