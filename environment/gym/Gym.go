// Package gym provides access to OpenAI Gym environments, such as the
// NStats congestion control environment, for use with package
// controller.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/samuelfneumann/gogym"
	ts "github.com/thangduong/baselines/timestep"
	"gonum.org/v1/gonum/mat"
)

// NStatsV0 is the name of the NStats congestion control environment
const NStatsV0 = "NStats-v0"

// GymEnv implements access to an OpenAI Gym environment using GoGym.
//
// Gym environments return flat observations. GymEnv reshapes each
// observation into a history matrix of features columns, one row per
// recorded step with the most recent step last.
type GymEnv struct {
	gogym.Environment

	features    int
	currentStep ts.TimeStep
	log         logr.Logger
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite. Observations are reshaped to rows of
// features values.
func New(name string, features int, seed uint64,
	log logr.Logger) (*GymEnv, error) {
	if features <= 0 {
		return nil, fmt.Errorf("new: invalid number of features"+
			"\n\twant(> 0)\n\thave(%d)", features)
	}

	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, fmt.Errorf("new: could not create environment: %v", err)
	}
	goGymEnv.Seed(int(seed))

	return &GymEnv{
		Environment: goGymEnv,
		features:    features,
		log:         log.WithName("gym").WithValues("env", name),
	}, nil
}

// Step takes a single environmental step
func (g *GymEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	obs, reward, done, err := g.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not step "+
			"GoGym environment: %v", err)
	}

	history, err := g.history(obs)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	t := ts.New(ts.Mid, reward, history, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
	}
	g.currentStep = t

	return t, done, nil
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() (ts.TimeStep, error) {
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not reset "+
			"environment: %v", err)
	}

	history, err := g.history(obs)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	t := ts.New(ts.First, 0, history, 0)
	g.currentStep = t

	return t, nil
}

// Render logs the most recent observation row at V(1)
func (g *GymEnv) Render() error {
	latest := g.currentStep.Latest()
	if latest == nil {
		return nil
	}
	g.log.V(1).Info("render", "step", g.currentStep.Number,
		"observation", latest.RawVector().Data)
	return nil
}

// CurrentTimeStep returns the current timestep in the environment
func (g *GymEnv) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// Features returns the number of features in each observation row
func (g *GymEnv) Features() int {
	return g.features
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}

// history reshapes a flat observation into a (len/features, features)
// matrix
func (g *GymEnv) history(obs mat.Vector) (*mat.Dense, error) {
	return Reshape(obs, g.features)
}

// Reshape returns the flat observation obs as a matrix of features
// columns. The length of obs must be a multiple of features.
func Reshape(obs mat.Vector, features int) (*mat.Dense, error) {
	if obs == nil || obs.Len() == 0 {
		return nil, fmt.Errorf("reshape: empty observation")
	}
	if features <= 0 || obs.Len()%features != 0 {
		return nil, fmt.Errorf("reshape: observation of length %d cannot "+
			"be split into rows of %d features", obs.Len(), features)
	}

	rows := obs.Len() / features
	data := make([]float64, obs.Len())
	for i := range data {
		data[i] = obs.AtVec(i)
	}
	return mat.NewDense(rows, features, data), nil
}
