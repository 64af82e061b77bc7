// langton runs Langton's ant on the terminal, on a square toroidal board.
//
// The board size and number of steps are taken from the environment variables COLUMNS,
// LINES and ITERATIONS, and can be overridden by the positional arguments, in that order.
// Invalid values are silently ignored.
package main

import (
	"context"
	"flag"
	"github.com/janpfeifer/hexants/internal/driver"
	"github.com/janpfeifer/hexants/internal/langton"
	"github.com/janpfeifer/hexants/internal/parameters"
	"github.com/janpfeifer/hexants/internal/ui/cli"
	"github.com/janpfeifer/hexants/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
	"time"
)

const (
	defaultColumns    = 80
	defaultLines      = 25
	defaultIterations = 100_000
)

var (
	flagColor       = flag.Bool("color", true, "Highlight the ant's cell.")
	flagRenderEvery = flag.Int("render_every", 1000, "Draw the board every that many steps, 0 to only draw the final board.")
	flagDelay       = flag.Duration("delay", 0, "Delay after each drawn frame.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	columns, lines, iterations := loadConfig(flag.Args())
	klog.V(1).Infof("Langton's ant on %dx%d board, %d iterations", columns, lines, iterations)

	board := must.M1(langton.NewBoard(columns, lines))
	ui := cli.New(*flagColor, true)
	for board.StepNumber < iterations && ctx.Err() == nil {
		board.Step()
		if *flagRenderEvery > 0 && board.StepNumber%*flagRenderEvery == 0 {
			ui.PrintLangton(board, iterations)
			if *flagDelay > 0 {
				time.Sleep(*flagDelay)
			}
		}
	}
	ui.PrintLangton(board, iterations)
}

var configKeys = []string{driver.EnvWidth, driver.EnvHeight, driver.EnvIterations}

// loadConfig reads the environment first, and then the positional arguments: invalid values
// keep the previous one. The board needs at least one column and line, but 0 iterations
// is valid and only draws the initial board.
func loadConfig(args []string) (columns, lines, iterations int) {
	argParams := make(parameters.Params)
	argParams.SetPositional(args, configKeys...)
	columns, lines, iterations = defaultColumns, defaultLines, defaultIterations
	for _, params := range []parameters.Params{parameters.NewFromEnv(configKeys...), argParams} {
		columns = atLeastOr(parameters.GetOrDefault(params, driver.EnvWidth, columns), 1, columns)
		lines = atLeastOr(parameters.GetOrDefault(params, driver.EnvHeight, lines), 1, lines)
		iterations = atLeastOr(parameters.GetOrDefault(params, driver.EnvIterations, iterations), 0, iterations)
	}
	return
}

func atLeastOr(value, minValue, previous int) int {
	if value < minValue {
		return previous
	}
	return value
}
