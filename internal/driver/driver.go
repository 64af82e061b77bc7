// Package driver runs a simulation: it owns the random source and the iteration count,
// populates the board and advances it one tick at a time, until the target number of
// iterations is reached.
package driver

import (
	"context"
	"github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/tracelog"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"math/rand/v2"
	"time"
)

// Driver of one simulation run.
type Driver struct {
	cfg        Config
	seed       uint64
	rng        *rand.Rand
	board      *state.Board
	totalItems int

	// CheckInvariants after every tick. It's cheap for the small boards this is meant for,
	// but it's off by default.
	CheckInvariants bool

	// Trace, if set, receives a TraceEntry before the first tick and then every TraceEvery
	// ticks (every tick if TraceEvery <= 0). The caller owns it, and must close it.
	Trace      *tracelog.Writer
	TraceEvery int
}

// TraceEntry is the record written to Driver.Trace.
type TraceEntry struct {
	Seed  uint64           `json:"seed"`
	Stats state.BoardStats `json:"stats"`
}

// New creates the board described by cfg and populates it at random: first the ants, then
// the leaves and then the sticks, all drawn from the same random source that later drives
// the ants' movement. So a run is fully determined by its configuration and seed.
func New(cfg Config) (*Driver, error) {
	board, err := state.NewBoard(cfg.Width, cfg.Height)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create board for configuration %s", cfg)
	}
	d := &Driver{
		cfg:   cfg,
		seed:  cfg.Seed,
		board: board,
	}
	if d.seed == 0 {
		d.seed = rand.Uint64()
	}
	d.rng = rand.New(rand.NewPCG(d.seed, d.seed))
	klog.V(1).Infof("New simulation: %s, seed=%d", cfg, d.seed)

	for range cfg.Ants {
		board.AddAnt(d.rng.IntN(cfg.Width), d.rng.IntN(cfg.Height))
	}
	for _, population := range []struct {
		count    int
		itemType state.ItemType
	}{{cfg.Leaves, state.Leaf}, {cfg.Sticks, state.Stick}} {
		for range population.count {
			err = board.AddItem(state.NewItem(d.rng.IntN(cfg.Width), d.rng.IntN(cfg.Height),
				cfg.InitialFreeze, population.itemType))
			if err != nil {
				return nil, err
			}
		}
	}
	d.totalItems = cfg.Leaves + cfg.Sticks
	return d, nil
}

// Config used by the driver.
func (d *Driver) Config() Config { return d.cfg }

// Seed actually used: if Config.Seed was 0, this is the randomly picked one.
func (d *Driver) Seed() uint64 { return d.seed }

// Board being simulated. It should not be changed by the caller.
func (d *Driver) Board() *state.Board { return d.board }

// Iteration returns the number of ticks executed so far.
func (d *Driver) Iteration() int { return d.board.TickNumber }

// Done returns whether the target number of iterations has been reached.
func (d *Driver) Done() bool { return d.board.TickNumber >= d.cfg.Iterations }

// Step executes one tick, if the target number of iterations has not been reached.
// It returns whether the board was advanced.
//
// An error is only returned if CheckInvariants is set and they are violated.
func (d *Driver) Step() (advanced bool, err error) {
	if d.Done() {
		return false, nil
	}
	d.board.Tick(d.rng)
	if klog.V(2).Enabled() {
		klog.Infof("Stats: %s", d.board.Stats())
	}
	if d.CheckInvariants {
		if err = d.board.CheckInvariants(d.totalItems); err != nil {
			return true, errors.WithMessagef(err, "invariants violated at tick %d (seed=%d)", d.board.TickNumber, d.seed)
		}
	}
	if d.TraceEvery <= 1 || d.board.TickNumber%d.TraceEvery == 0 {
		err = d.trace()
	}
	return true, err
}

func (d *Driver) trace() error {
	if d.Trace == nil {
		return nil
	}
	return d.Trace.Write(TraceEntry{Seed: d.seed, Stats: d.board.Stats()})
}

// Run steps through the simulation until the target number of iterations is reached, or until
// ctx is cancelled -- in which case it returns the context error. Cancellation is only checked
// between ticks.
//
// If frame is not nil, it is called once before the first tick, and then after every tick.
// It must not modify the board.
func (d *Driver) Run(ctx context.Context, frame func(board *state.Board)) error {
	start := time.Now()
	if d.board.TickNumber == 0 {
		if err := d.trace(); err != nil {
			return err
		}
	}
	if frame != nil {
		frame(d.board)
	}
	for !d.Done() {
		if err := ctx.Err(); err != nil {
			klog.V(1).Infof("Simulation interrupted at tick %d: %v", d.board.TickNumber, err)
			return err
		}
		if _, err := d.Step(); err != nil {
			return err
		}
		if frame != nil {
			frame(d.board)
		}
		if d.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.cfg.Delay):
			}
		}
	}
	klog.V(1).Infof("Simulation finished %d ticks in %s: %s", d.board.TickNumber, time.Since(start), d.board.Stats())
	return nil
}
