package driver

import (
	"context"
	"github.com/janpfeifer/hexants/internal/hexgrid"
	"github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func unsetEnv(t *testing.T) {
	// t.Setenv restores the variables at the end of the test; empty values fall back to defaults.
	for _, name := range []string{EnvWidth, EnvHeight, EnvIterations, EnvDelay, EnvAnts, EnvLeaves, EnvSticks, EnvSeed} {
		t.Setenv(name, "")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	unsetEnv(t)
	assert.Equal(t, DefaultConfig(), ConfigFromEnv(nil))
}

func TestConfigFromEnv(t *testing.T) {
	unsetEnv(t)
	t.Setenv(EnvWidth, "12")
	t.Setenv(EnvHeight, "not-a-number")
	t.Setenv(EnvIterations, "500")
	t.Setenv(EnvDelay, "15")
	t.Setenv(EnvAnts, "-3")
	t.Setenv(EnvSeed, "99")
	cfg := ConfigFromEnv(nil)
	want := DefaultConfig()
	want.Width = 12
	want.Iterations = 500
	want.Delay = 15 * time.Millisecond
	want.Seed = 99
	assert.Equal(t, want, cfg)

	// Positional arguments override the environment, and bad values keep the previous ones.
	cfg = ConfigFromEnv([]string{"30", "0", "bad", "7", "ignored"})
	want.Width = 30
	want.Delay = 7 * time.Millisecond
	assert.Equal(t, want, cfg)
}

func TestConfigSeedRange(t *testing.T) {
	unsetEnv(t)
	t.Setenv(EnvSeed, "18446744073709551615")
	assert.Equal(t, uint64(18446744073709551615), ConfigFromEnv(nil).Seed)

	// Seeds above math.MaxInt64 reproduce runs like any other.
	cfg := testConfig()
	cfg.Seed = 1 << 63
	d, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), d.Seed())

	// Negative seeds are not valid, and keep the previous value.
	t.Setenv(EnvSeed, "-5")
	assert.Equal(t, DefaultConfig().Seed, ConfigFromEnv(nil).Seed)
}

// TestNewPopulationOrder replays the population drawn by New: first the ants, then the leaves
// and then the sticks, each position drawn as column then row from the run's random source.
func TestNewPopulationOrder(t *testing.T) {
	cfg := testConfig()
	d, err := New(cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	var wantAnts []hexgrid.Pos
	for range cfg.Ants {
		wantAnts = append(wantAnts, hexgrid.Pos{X: rng.IntN(cfg.Width), Y: rng.IntN(cfg.Height)})
	}
	var wantItems []state.Item
	for range cfg.Leaves {
		wantItems = append(wantItems, state.NewItem(rng.IntN(cfg.Width), rng.IntN(cfg.Height), 0, state.Leaf))
	}
	for range cfg.Sticks {
		wantItems = append(wantItems, state.NewItem(rng.IntN(cfg.Width), rng.IntN(cfg.Height), 0, state.Stick))
	}

	var gotAnts []hexgrid.Pos
	for ant := range d.Board().AntsIter() {
		assert.False(t, ant.IsCarrying())
		gotAnts = append(gotAnts, ant.Pos)
	}
	assert.Equal(t, wantAnts, gotAnts)
	assert.Equal(t, wantItems, d.Board().Items())

	// The first tick continues drawing from the same source.
	wantBoard := d.Board().Clone()
	wantBoard.Tick(rng)
	_, err = d.Step()
	require.NoError(t, err)
	assert.Equal(t, wantBoard.Ants(), d.Board().Ants())
	assert.Equal(t, wantBoard.Items(), d.Board().Items())
}

func testConfig() Config {
	return Config{Width: 10, Height: 8, Iterations: 50, Ants: 6, Leaves: 15, Sticks: 10, Seed: 42}
}

func TestNew(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)
	b := d.Board()
	assert.Equal(t, 6, b.NumAnts())
	assert.Equal(t, 25, b.NumItems())
	stats := b.Stats()
	assert.Equal(t, 15, stats.ItemsByType[state.Leaf])
	assert.Equal(t, 10, stats.ItemsByType[state.Stick])
	assert.Equal(t, uint64(42), d.Seed())
	require.NoError(t, b.CheckInvariants(25))

	cfg := testConfig()
	cfg.Width = 0
	_, err = New(cfg)
	require.Error(t, err)

	// A random seed is picked when none is given.
	cfg = testConfig()
	cfg.Seed = 0
	d, err = New(cfg)
	require.NoError(t, err)
	assert.NotZero(t, d.Seed())
}

func TestStepFreezesAfterTarget(t *testing.T) {
	d, err := New(testConfig())
	require.NoError(t, err)
	d.CheckInvariants = true
	for range 50 {
		advanced, err := d.Step()
		require.NoError(t, err)
		require.True(t, advanced)
	}
	assert.True(t, d.Done())
	frozen := d.Board().Clone()
	advanced, err := d.Step()
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 50, d.Iteration())
	assert.Equal(t, frozen.Items(), d.Board().Items())
	assert.Equal(t, frozen.Ants(), d.Board().Ants())
}

func TestRunReplay(t *testing.T) {
	var finalStates [2]*state.Board
	for ii := range finalStates {
		d, err := New(testConfig())
		require.NoError(t, err)
		d.CheckInvariants = true
		frames := 0
		require.NoError(t, d.Run(context.Background(), func(*state.Board) { frames++ }))
		assert.Equal(t, 51, frames)
		finalStates[ii] = d.Board()
	}
	assert.Equal(t, finalStates[0].Items(), finalStates[1].Items())
	assert.Equal(t, finalStates[0].Ants(), finalStates[1].Ants())
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 1_000_000
	d, err := New(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	err = d.Run(ctx, func(b *state.Board) {
		if b.TickNumber == 10 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, d.Iteration())
}

func TestRunNoIterations(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 0
	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Run(context.Background(), nil))
	assert.Equal(t, 0, d.Iteration())
}

func TestRunTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace"+tracelog.Extension)
	w, err := tracelog.Create(path)
	require.NoError(t, err)
	d, err := New(testConfig())
	require.NoError(t, err)
	d.Trace = w
	d.TraceEvery = 10
	require.NoError(t, d.Run(context.Background(), nil))
	require.NoError(t, w.Close())

	var ticks []int
	require.NoError(t, tracelog.Read(path, func(entry TraceEntry) error {
		assert.Equal(t, uint64(42), entry.Seed)
		assert.Equal(t, 25, entry.Stats.BoardItems+entry.Stats.CarriedItems)
		ticks = append(ticks, entry.Stats.Tick)
		return nil
	}))
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50}, ticks)
}

func TestLoadConfig(t *testing.T) {
	unsetEnv(t)
	path := filepath.Join(t.TempDir(), "hexants.yaml")
	require.NoError(t, os.WriteFile(path, []byte("COLUMNS: 50\nLINES: 25\nANTS: 0\nSTICKS: bad\nSEED: 3\n"), 0o644))
	t.Setenv(EnvHeight, "30")

	cfg, err := LoadConfig(path, []string{"60"})
	require.NoError(t, err)
	want := DefaultConfig()
	want.Width = 60  // Positional argument wins.
	want.Height = 30 // Environment wins over the file.
	want.Ants = 0
	want.Seed = 3
	assert.Equal(t, want, cfg)

	cfg, err = LoadConfig("", nil)
	require.NoError(t, err)
	want = DefaultConfig()
	want.Height = 30
	assert.Equal(t, want, cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
