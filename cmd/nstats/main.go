// Command nstats drives the NStats congestion control environment with
// a heuristic controller that adjusts the send rate from the ratio of
// the received rate to the send rate.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samuelfneumann/gogym"
	"github.com/samuelfneumann/progressbar"
	"github.com/spf13/pflag"
	"github.com/thangduong/baselines/controller"
	"github.com/thangduong/baselines/environment/gym"
	"github.com/thangduong/baselines/internal/logging"
	ts "github.com/thangduong/baselines/timestep"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nstats: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()
	if err := opts.Validate(); err != nil {
		return err
	}

	log, err := logging.New(opts.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	env, err := gym.New(opts.Env, opts.Features, opts.Seed, log)
	if err != nil {
		return err
	}
	defer gogym.Close()
	defer env.Close()

	c := controller.New(env, controller.DefaultRule(), log)
	c.MaxSteps = opts.MaxSteps
	if opts.MaxSteps > 0 && opts.Progress {
		bar := progressbar.NewManual(50, opts.MaxSteps)
		defer fmt.Println()
		c.OnStep = func(int, ts.TimeStep) {
			bar.Increment()
			bar.Display()
		}
	}

	steps, err := c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted", "steps", steps)
		return nil
	}
	return err
}
