package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/thangduong/baselines/internal/logging"
)

// Options contains the command-line configuration of netbuild
type Options struct {
	List       bool   // List the registered builders and exit
	Network    string // Name of the builder to use
	Config     string // Path to a JSON models.Config
	InputShape []int  // Shape of the observation input
	ActionDim  int    // Width of the action input, 0 for no action
	Envs       int    // Number of parallel environments
	LogLevel   int    // Log verbosity
}

// NewOptions returns a new Options struct initialized with default values.
func NewOptions() *Options {
	return &Options{
		Network:    "mlp",
		InputShape: []int{8, 10, 6},
		Envs:       1,
		LogLevel:   logging.DEFAULT,
	}
}

// AddFlags binds the Options fields to command-line flags on the given
// FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&opts.List, "list", opts.List,
		"List the registered network builders.")
	fs.StringVar(&opts.Network, "network", opts.Network,
		"The registered name of the network to build.")
	fs.StringVar(&opts.Config, "config", opts.Config,
		"Path to a JSON network configuration. Defaults are used if empty.")
	fs.IntSliceVar(&opts.InputShape, "input-shape", opts.InputShape,
		"The shape of the observation input, batch first.")
	fs.IntVar(&opts.ActionDim, "action-dim", opts.ActionDim,
		"The width of the action input of critic networks.")
	fs.IntVar(&opts.Envs, "envs", opts.Envs,
		"The number of parallel environments of recurrent networks.")
	fs.IntVarP(&opts.LogLevel, "log-level", "v", opts.LogLevel,
		"Number for the log level verbosity.")
}

// Validate checks the Options for invalid values.
func (opts *Options) Validate() error {
	if opts.List {
		return nil
	}
	if opts.Network == "" {
		return fmt.Errorf("flag %q must not be empty", "network")
	}
	if len(opts.InputShape) == 0 {
		return fmt.Errorf("flag %q must not be empty", "input-shape")
	}
	for _, dim := range opts.InputShape {
		if dim <= 0 {
			return fmt.Errorf("invalid value %v for flag %q: dimensions "+
				"must be positive", opts.InputShape, "input-shape")
		}
	}
	if opts.ActionDim < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be "+
			"negative", opts.ActionDim, "action-dim")
	}
	if opts.Envs <= 0 {
		return fmt.Errorf("invalid value %d for flag %q: must be positive",
			opts.Envs, "envs")
	}
	if opts.LogLevel < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be "+
			"negative", opts.LogLevel, "log-level")
	}
	return nil
}
