package driver

import (
	"fmt"
	"github.com/janpfeifer/hexants/internal/parameters"
	"time"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvWidth      = "COLUMNS"
	EnvHeight     = "LINES"
	EnvIterations = "ITERATIONS"
	EnvDelay      = "DELAY_MS"
	EnvAnts       = "ANTS"
	EnvLeaves     = "LEAVES"
	EnvSticks     = "STICKS"
	EnvSeed       = "SEED"
)

// Config of a simulation run.
type Config struct {
	Width, Height int

	// Iterations is the number of ticks after which the board is frozen.
	Iterations int

	// Delay between ticks, to make it watchable.
	Delay time.Duration

	// Population placed at random positions before the first tick.
	Ants, Leaves, Sticks int

	// InitialFreeze is the freeze time of the items initially placed.
	InitialFreeze int

	// Seed of the random source. If 0 a random seed is picked (and logged).
	Seed uint64
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		Width:      40,
		Height:     20,
		Iterations: 100_000,
		Ants:       20,
		Leaves:     60,
		Sticks:     60,
	}
}

// String returns a one-line text representation of the configuration.
func (c Config) String() string {
	return fmt.Sprintf("board=%dx%d iterations=%d delay=%s ants=%d leaves=%d sticks=%d freeze=%d seed=%d",
		c.Width, c.Height, c.Iterations, c.Delay, c.Ants, c.Leaves, c.Sticks, c.InitialFreeze, c.Seed)
}

// PositionalKeys are the parameters that can be given as positional arguments, in order.
var PositionalKeys = []string{EnvWidth, EnvHeight, EnvIterations, EnvDelay}

// ConfigFromEnv returns DefaultConfig overridden by the environment variables (see Env* constants),
// and then by the positional args (see PositionalKeys).
//
// Values that are missing or fail to parse silently keep the previous value.
func ConfigFromEnv(args []string) Config {
	return DefaultConfig().applyEnvAndArgs(args)
}

// LoadConfig is like ConfigFromEnv, but the defaults are first overridden by the YAML configuration
// file (if configFile is not empty), keyed by the same names as the environment variables.
//
// Only failing to read or parse the file is an error: invalid values are ignored, as with
// the environment variables.
func LoadConfig(configFile string, args []string) (Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		params, err := parameters.NewFromYAMLFile(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.Apply(params)
	}
	return cfg.applyEnvAndArgs(args), nil
}

func (c Config) applyEnvAndArgs(args []string) Config {
	c = c.Apply(parameters.NewFromEnv(EnvWidth, EnvHeight, EnvIterations, EnvDelay,
		EnvAnts, EnvLeaves, EnvSticks, EnvSeed))
	positional := make(parameters.Params)
	positional.SetPositional(args, PositionalKeys...)
	return c.Apply(positional)
}

// Apply returns a copy of the configuration with the values in params, keyed by the Env* names,
// overriding the current ones. Values that fail to parse, or that are out of range (e.g. a
// negative number of ants, or a board width of 0), are ignored.
func (c Config) Apply(params parameters.Params) Config {
	c.Width = atLeast(parameters.GetOrDefault(params, EnvWidth, c.Width), 1, c.Width)
	c.Height = atLeast(parameters.GetOrDefault(params, EnvHeight, c.Height), 1, c.Height)
	c.Iterations = atLeast(parameters.GetOrDefault(params, EnvIterations, c.Iterations), 0, c.Iterations)
	delayMs := int(c.Delay / time.Millisecond)
	delayMs = atLeast(parameters.GetOrDefault(params, EnvDelay, delayMs), 0, delayMs)
	c.Delay = time.Duration(delayMs) * time.Millisecond
	c.Ants = atLeast(parameters.GetOrDefault(params, EnvAnts, c.Ants), 0, c.Ants)
	c.Leaves = atLeast(parameters.GetOrDefault(params, EnvLeaves, c.Leaves), 0, c.Leaves)
	c.Sticks = atLeast(parameters.GetOrDefault(params, EnvSticks, c.Sticks), 0, c.Sticks)
	c.Seed = parameters.GetOrDefault(params, EnvSeed, c.Seed)
	return c
}

// atLeast returns value if it is >= minValue, otherwise previous.
func atLeast(value, minValue, previous int) int {
	if value < minValue {
		return previous
	}
	return value
}
