package controller

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	ts "github.com/thangduong/baselines/timestep"
	"gonum.org/v1/gonum/mat"
)

// Environment is the environment driven by a Controller
type Environment interface {
	// Reset starts the environment and returns the first TimeStep
	Reset() (ts.TimeStep, error)

	// Step takes the action a and returns the next TimeStep and
	// whether the episode has ended
	Step(a *mat.VecDense) (ts.TimeStep, bool, error)

	// Render displays the current state of the environment
	Render() error
}

// Controller runs a Rule against an Environment
type Controller struct {
	env  Environment
	rule Rule
	log  logr.Logger

	// MaxSteps bounds the number of steps taken by Run. If MaxSteps is
	// 0, Run continues until its context is cancelled.
	MaxSteps int

	// OnStep, if not nil, is called after each step with the number of
	// steps taken so far and the resulting TimeStep
	OnStep func(steps int, step ts.TimeStep)
}

// New returns a new Controller. The Controller logs each decision to
// log at V(1).
func New(env Environment, rule Rule, log logr.Logger) *Controller {
	return &Controller{
		env:  env,
		rule: rule,
		log:  log.WithName("controller"),
	}
}

// Run resets the environment once and then repeatedly applies the Rule
// to the latest observation, rendering before and after each step.
//
// Episode ends reported by the environment are ignored and the
// environment is never reset again. Run returns the number of steps
// taken and stops when ctx is done, when the environment returns an
// error or after MaxSteps steps if MaxSteps is positive. Reaching
// MaxSteps is not an error; a cancelled context returns ctx.Err().
func (c *Controller) Run(ctx context.Context) (int, error) {
	step, err := c.env.Reset()
	if err != nil {
		return 0, fmt.Errorf("run: could not reset environment: %w", err)
	}
	c.log.Info("environment reset", "step", step.String())

	action := mat.NewVecDense(1, nil)
	steps := 0
	for c.MaxSteps <= 0 || steps < c.MaxSteps {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		a, err := c.rule.Action(step.Observation)
		if err != nil {
			return steps, fmt.Errorf("run: step %d: %w", steps, err)
		}
		action.SetVec(0, a)

		if err := c.env.Render(); err != nil {
			return steps, fmt.Errorf("run: could not render: %w", err)
		}

		var done bool
		step, done, err = c.env.Step(action)
		if err != nil {
			return steps, fmt.Errorf("run: could not step environment: %w",
				err)
		}
		steps++

		if err := c.env.Render(); err != nil {
			return steps, fmt.Errorf("run: could not render: %w", err)
		}

		c.log.V(1).Info("step", "number", steps, "action", a,
			"reward", step.Reward, "done", done)
		if c.OnStep != nil {
			c.OnStep(steps, step)
		}
	}

	c.log.Info("step budget reached", "steps", steps)
	return steps, nil
}
