package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/thangduong/baselines/environment/gym"
	"github.com/thangduong/baselines/internal/logging"
)

// DefaultFeatures is the width of an NStats observation row
const DefaultFeatures = 6

// Options contains the command-line configuration of the controller
type Options struct {
	Env      string // Gym environment name
	Features int    // Number of features in each observation row
	Seed     uint64 // Environment seed
	MaxSteps int    // Step budget, 0 runs until interrupted
	LogLevel int    // Log verbosity
	Progress bool   // Display a progress bar for bounded runs
}

// NewOptions returns a new Options struct initialized with default values.
func NewOptions() *Options {
	return &Options{
		Env:      gym.NStatsV0,
		Features: DefaultFeatures,
		LogLevel: logging.DEFAULT,
	}
}

// AddFlags binds the Options fields to command-line flags on the given
// FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&opts.Env, "env", opts.Env,
		"The Gym environment to control.")
	fs.IntVar(&opts.Features, "features", opts.Features,
		"The number of features in each observation row.")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed,
		"The environment seed.")
	fs.IntVar(&opts.MaxSteps, "max-steps", opts.MaxSteps,
		"The maximum number of steps to take, 0 runs until interrupted.")
	fs.BoolVar(&opts.Progress, "progress", opts.Progress,
		"Display a progress bar when --max-steps is set.")
	fs.IntVarP(&opts.LogLevel, "log-level", "v", opts.LogLevel,
		"Number for the log level verbosity.")
}

// Validate checks the Options for invalid values.
func (opts *Options) Validate() error {
	if opts.Env == "" {
		return fmt.Errorf("flag %q must not be empty", "env")
	}
	if opts.Features <= 0 {
		return fmt.Errorf("invalid value %d for flag %q: must be positive",
			opts.Features, "features")
	}
	if opts.MaxSteps < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be "+
			"negative", opts.MaxSteps, "max-steps")
	}
	if opts.LogLevel < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be "+
			"negative", opts.LogLevel, "log-level")
	}
	return nil
}
