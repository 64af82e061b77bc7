// antsweep runs the ants simulation for many seeds in parallel, without drawing the boards,
// and reports how much the items got clustered by type in each run.
//
// The configuration is taken from the same configuration file, environment variables and
// positional arguments as hexants, and can be further overridden with -config, e.g.:
//
//	$ go run ./cmd/antsweep -runs=32 -config="ANTS=40,ITERATIONS=20000"
//
// With -trace_dir the statistics of each run are recorded, tick by tick, in one file per seed.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/hexants/internal/driver"
	"github.com/janpfeifer/hexants/internal/generics"
	"github.com/janpfeifer/hexants/internal/parameters"
	"github.com/janpfeifer/hexants/internal/profilers"
	"github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/tracelog"
	"github.com/janpfeifer/hexants/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

var (
	flagRuns     = flag.Int("runs", 16, "Number of simulation runs, each with a different seed.")
	flagSeedBase = flag.Uint64("seed_base", 1, "Seed of the first run: run i uses seed_base+i.")
	flagConfig   = flag.String("config", "", "Comma separated list of key=value overriding the "+
		"configuration, using the environment variable names as keys (e.g. \"ANTS=40,LINES=30\").")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and run "+
		"these many simulations simultaneously.")
	flagCheck      = flag.Bool("check", false, "Check the simulation invariants after every tick.")
	flagConfigFile = flag.String("config_file", "", "YAML file with the configuration, keyed by the "+
		"environment variable names (e.g. \"ANTS: 40\").")
	flagTraceDir   = flag.String("trace_dir", "", "If set, the board statistics of each run are recorded in this directory.")
	flagTraceEvery = flag.Int("trace_every", 100, "Record the board statistics every that many ticks.")
)

// RunResult holds the outcome of one simulation run.
type RunResult struct {
	Seed        uint64
	Initial     state.BoardStats
	Final       state.BoardStats
	Elapsed     time.Duration
	TicksPerSec float64
	Interrupted bool
}

// Progress of the sweep, shared by the runs.
type Progress struct {
	mu              sync.Mutex
	finished, total int
	ticks           int64
	start           time.Time
}

func (p *Progress) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("Finished %d of %d runs, %d ticks in %s", p.finished, p.total, p.ticks,
		time.Since(p.start).Round(time.Millisecond))
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagRuns <= 0 {
		exceptions.Panicf("invalid -runs=%d, it must be > 0", *flagRuns)
	}

	// Capture Control+C
	globalCtx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()

	onQuit := must.M1(profilers.Setup(globalCtx))
	defer onQuit()

	cfg := must.M1(driver.LoadConfig(*flagConfigFile, flag.Args()))
	cfg = cfg.Apply(parameters.NewFromConfigString(*flagConfig))
	fmt.Printf("Configuration: %s\n", cfg)

	results, err := runSweep(globalCtx, cfg)
	if err != nil {
		klog.Exitf("Sweep failed: %+v", err)
	}
	printResults(results)
}

// runSweep runs the simulations in parallel, and returns the results ordered by seed.
func runSweep(ctx context.Context, cfg driver.Config) ([]RunResult, error) {
	progress := &Progress{total: *flagRuns, start: time.Now()}
	results := make([]RunResult, *flagRuns)
	var wg errgroup.Group
	wg.SetLimit(getParallelism())
	s := spinning.New(ctx, progress.String)
	for runIdx := range *flagRuns {
		wg.Go(func() error {
			runCfg := cfg
			runCfg.Seed = *flagSeedBase + uint64(runIdx)
			var result RunResult
			err := exceptions.TryCatch[error](func() {
				result = must.M1(runOne(ctx, runCfg, progress))
			})
			if err != nil {
				return errors.WithMessagef(err, "run #%d (seed=%d)", runIdx, runCfg.Seed)
			}
			results[runIdx] = result
			return nil
		})
	}
	err := wg.Wait()
	s.Done()
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
	}
	return results, err
}

// runOne simulation until its last iteration or until interrupted.
func runOne(ctx context.Context, cfg driver.Config, progress *Progress) (result RunResult, err error) {
	d, err := driver.New(cfg)
	if err != nil {
		return
	}
	d.CheckInvariants = *flagCheck
	if *flagTraceDir != "" {
		d.Trace, err = tracelog.Create(filepath.Join(*flagTraceDir, fmt.Sprintf("seed-%d%s", d.Seed(), tracelog.Extension)))
		if err != nil {
			return
		}
		d.TraceEvery = *flagTraceEvery
		defer func() {
			if closeErr := d.Trace.Close(); err == nil {
				err = closeErr
			}
		}()
	}
	result.Seed = d.Seed()
	result.Initial = d.Board().Stats()
	start := time.Now()
	err = d.Run(ctx, nil)
	if err != nil && ctx.Err() == nil {
		return
	}
	err = nil
	result.Interrupted = !d.Done()
	result.Elapsed = time.Since(start)
	result.Final = d.Board().Stats()
	if seconds := result.Elapsed.Seconds(); seconds > 0 {
		result.TicksPerSec = float64(d.Iteration()) / seconds
	}
	klog.V(1).Infof("Seed %d: %s", result.Seed, result.Final)

	progress.mu.Lock()
	progress.finished++
	progress.ticks += int64(d.Iteration())
	progress.mu.Unlock()
	return
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

func printResults(results []RunResult) {
	rows := generics.SliceMap(results, func(r RunResult) []string {
		status := "ok"
		if r.Interrupted {
			status = "interrupted"
		}
		return []string{
			fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%d", r.Final.Tick),
			fmt.Sprintf("%.3f", r.Initial.SameTypeAdjacency),
			fmt.Sprintf("%.3f", r.Final.SameTypeAdjacency),
			fmt.Sprintf("%d", r.Final.CarriedItems),
			fmt.Sprintf("%.0f", r.TicksPerSec),
			status,
		}
	})
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Seed", "Ticks", "Adjacency (start)", "Adjacency (end)", "Carried", "Ticks/s", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	fmt.Println(t.Render())

	initial := generics.Mean(results, func(r RunResult) float32 { return r.Initial.SameTypeAdjacency })
	final := generics.Mean(results, func(r RunResult) float32 { return r.Final.SameTypeAdjacency })
	fmt.Printf("Mean same-type adjacency: %.3f -> %.3f\n", initial, final)
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
