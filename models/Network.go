package models

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Inputs are the graph nodes a network function is applied to.
//
// X is always required. Action is required by critic networks, which
// condition their output on an action as well as an observation, and is
// ignored by all other networks. NumEnvs is the number of parallel
// environments whose steps make up the batch of X; it is used only by
// recurrent networks and a value of 0 is treated as 1.
type Inputs struct {
	X       *G.Node
	Action  *G.Node
	NumEnvs int
}

// RecurrentState holds the nodes a training loop needs to thread the
// state of a recurrent network across calls to the network.
//
// The training loop feeds Mask (1 where the previous step ended an
// episode, 0 elsewhere) and State (the [c, h] state of each environment)
// before running the graph, then reads Next and feeds it back as State
// at the next call. Initial holds the zero-filled starting state.
type RecurrentState struct {
	Mask    *G.Node
	State   *G.Node
	Next    *G.Node
	Initial *tensor.Dense
}

// Network is the output of applying a network function to its Inputs.
// State is nil for networks that are not recurrent.
type Network struct {
	Output     *G.Node
	Learnables G.Nodes
	State      *RecurrentState
}

// Model returns the learnable nodes of the network with their gradients,
// as required by Gorgonia solvers.
func (n *Network) Model() []G.ValueGrad {
	model := make([]G.ValueGrad, 0, len(n.Learnables))
	for _, node := range n.Learnables {
		model = append(model, node)
	}
	return model
}

// Func is a network function: it adds a network to the graph of its
// inputs and returns the resulting Network.
type Func func(in Inputs) (*Network, error)

// Builder constructs a network function from a configuration.
type Builder func(Config) (Func, error)

// observation validates the observation node of in and returns it
func (in Inputs) observation(minRank int) (*G.Node, error) {
	if in.X == nil {
		return nil, fmt.Errorf("%w: missing input node", ErrInvalidConfig)
	}
	if in.X.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("%w: input must be %v, have %v",
			ErrInvalidConfig, tensor.Float64, in.X.Dtype())
	}
	if in.X.Dims() < minRank {
		return nil, fmt.Errorf("%w: input must have rank >= %d, have shape %v",
			ErrInvalidConfig, minRank, in.X.Shape())
	}
	return in.X, nil
}

// action validates the action node of in against the batch size of the
// observation and returns it
func (in Inputs) action(batch int) (*G.Node, error) {
	if in.Action == nil {
		return nil, fmt.Errorf("%w: critic networks require an action input",
			ErrInvalidConfig)
	}
	if !in.Action.IsMatrix() {
		return nil, fmt.Errorf("%w: action must be a (batch, actions) "+
			"matrix, have shape %v", ErrInvalidConfig, in.Action.Shape())
	}
	if in.Action.Shape()[0] != batch {
		return nil, fmt.Errorf("%w: invalid action batch size"+
			"\n\twant(%d)\n\thave(%d)", ErrInvalidConfig, batch,
			in.Action.Shape()[0])
	}
	if in.Action.Graph() != in.X.Graph() {
		return nil, fmt.Errorf("%w: action and observation must share a "+
			"graph", ErrInvalidConfig)
	}
	return in.Action, nil
}

// envs returns the number of parallel environments of in
func (in Inputs) envs() (int, error) {
	switch {
	case in.NumEnvs < 0:
		return 0, fmt.Errorf("%w: invalid number of environments %d",
			ErrInvalidConfig, in.NumEnvs)
	case in.NumEnvs == 0:
		return 1, nil
	default:
		return in.NumEnvs, nil
	}
}
