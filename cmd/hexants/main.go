// hexants runs the ants simulation on the terminal.
//
// The board is configured by the environment variables COLUMNS (width), LINES (height),
// ITERATIONS, DELAY_MS, ANTS, LEAVES, STICKS and SEED, and optionally overridden by the
// positional arguments: width, height, iterations and delay (in milliseconds).
//
// The same keys can be set in a YAML file given with -config_file, which the environment and
// positional arguments override.
//
// Example:
//
//	$ go run ./cmd/hexants -hold 60 30 5000 20
//
// With -serve the frames are also streamed to websocket observers (loopback only), at "/ws",
// and the last frame is served as JSON at "/frame".
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/hexants/internal/driver"
	"github.com/janpfeifer/hexants/internal/profilers"
	"github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/tracelog"
	"github.com/janpfeifer/hexants/internal/ui/cli"
	"github.com/janpfeifer/hexants/internal/ui/observer"
	"github.com/janpfeifer/hexants/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	"time"
)

var (
	flagColor       = flag.Bool("color", true, "Use colors when drawing the board.")
	flagClear       = flag.Bool("clear", true, "Clear the screen before drawing each frame.")
	flagRenderEvery = flag.Int("render_every", 1, "Draw the board every that many ticks. "+
		"Set to 0 to only draw the final board.")
	flagHold = flag.Bool("hold", false, "After the last tick, keep the program (and the final "+
		"board on the screen) until interrupted with Ctrl+C.")
	flagCheck      = flag.Bool("check", false, "Check the simulation invariants after every tick.")
	flagConfigFile = flag.String("config_file", "", "YAML file with the configuration, keyed by the "+
		"environment variable names (e.g. \"ANTS: 40\").")
	flagTrace      = flag.String("trace", "", "If set, the board statistics are recorded to this file (zstd compressed JSON lines).")
	flagTraceEvery = flag.Int("trace_every", 1, "Record the board statistics every that many ticks.")
	flagServe      = flag.String("serve", "", "If set, e.g. \"localhost:8080\", stream the frames to websocket observers.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagRenderEvery < 0 {
		exceptions.Panicf("invalid -render_every=%d, it must be >= 0", *flagRenderEvery)
	}

	// Capture Control+C
	globalCtx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	if err := run(globalCtx); err != nil {
		klog.Exitf("Simulation failed: %+v", err)
	}
}

// run the simulation configured by the flags until it finishes or ctx is cancelled.
// The trace, the observers and the profilers are closed before it returns, also on error.
func run(ctx context.Context) (err error) {
	onQuit, err := profilers.Setup(ctx)
	if err != nil {
		return err
	}
	defer onQuit()

	cfg, err := driver.LoadConfig(*flagConfigFile, flag.Args())
	if err != nil {
		return err
	}
	d, err := driver.New(cfg)
	if err != nil {
		return err
	}
	d.CheckInvariants = *flagCheck
	klog.V(1).Infof("Configuration: %s (seed=%d)", cfg, d.Seed())
	if *flagTrace != "" {
		d.Trace, err = tracelog.Create(*flagTrace)
		if err != nil {
			return err
		}
		d.TraceEvery = *flagTraceEvery
		defer func() {
			closeErr := d.Trace.Close()
			if closeErr == nil {
				return
			}
			if err == nil {
				err = closeErr
			} else {
				klog.Errorf("Trace: %+v", closeErr)
			}
		}()
	}
	obs := startObserver()
	if obs != nil {
		defer obs.Close()
	}

	ui := cli.New(*flagColor, *flagClear)
	frame := func(board *state.Board) {
		if *flagRenderEvery > 0 && board.TickNumber%*flagRenderEvery == 0 {
			ui.Print(board, cfg.Iterations)
			if obs != nil {
				if err := obs.Publish(board, cfg.Iterations); err != nil {
					klog.Warningf("Failed to publish frame: %+v", err)
				}
			}
		}
	}
	err = d.Run(ctx, frame)
	if err != nil {
		if ctx.Err() == nil {
			return err
		}
		// Interrupted: still show where it stopped.
		err = nil
	}

	// Final frame, if not already drawn.
	board := d.Board()
	if *flagRenderEvery == 0 || board.TickNumber%*flagRenderEvery != 0 {
		ui.Print(board, cfg.Iterations)
		if obs != nil {
			_ = obs.Publish(board, cfg.Iterations)
		}
	}
	fmt.Printf("\nSeed: %d\n", d.Seed())
	if *flagHold && ctx.Err() == nil {
		fmt.Println("Board frozen: interrupt (Ctrl+C) to exit.")
		<-ctx.Done()
	}
	return nil
}

// startObserver starts serving the observers, if -serve is set. The server is shut down
// when the program exits.
func startObserver() *observer.Server {
	if *flagServe == "" {
		return nil
	}
	obs := observer.NewServer()
	server := &http.Server{Addr: *flagServe, Handler: obs.Handler()}
	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Observer server on %q failed: %v", *flagServe, err)
		}
	}()
	klog.Infof("Streaming frames to observers at ws://%s/ws", *flagServe)
	return obs
}
