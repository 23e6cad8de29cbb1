package models

import (
	"fmt"

	"github.com/thangduong/baselines/network"
	G "gorgonia.org/gorgonia"
)

// MLP returns a network function for a stack of fully connected layers,
// used as a policy or value function approximator.
//
// The input is first flattened to (batch, features). Each of the
// config.NumLayers layers has config.NumHidden units, followed by layer
// normalization if config.LayerNorm is set and then config.Activation.
// With zero layers the network outputs the flattened input.
func MLP(config Config) (Func, error) {
	if config.NumLayers < 0 {
		return nil, fmt.Errorf("%w: mlp: invalid number of layers"+
			"\n\twant(>= 0)\n\thave(%d)", ErrInvalidConfig, config.NumLayers)
	}
	if config.NumLayers > 0 && config.NumHidden <= 0 {
		return nil, fmt.Errorf("%w: mlp: invalid number of hidden units"+
			"\n\twant(> 0)\n\thave(%d)", ErrInvalidConfig, config.NumHidden)
	}

	return func(in Inputs) (*Network, error) {
		x, err := in.observation(1)
		if err != nil {
			return nil, fmt.Errorf("mlp: %w", err)
		}

		s := config.scope(x.Graph())
		h, err := mlp(s, x, config.NumLayers, config.NumHidden,
			config.Activation, config.LayerNorm)
		if err != nil {
			return nil, fmt.Errorf("%w: mlp: %v", ErrInvalidConfig, err)
		}

		return &Network{Output: h, Learnables: s.Learnables()}, nil
	}, nil
}

// mlp adds the fully connected stack of MLP to the graph of s
func mlp(s *network.Scope, x *G.Node, layers, hidden int,
	act *network.Activation, layerNorm bool) (*G.Node, error) {
	h, err := network.Flatten(x)
	if err != nil {
		return nil, err
	}

	for i := 0; i < layers; i++ {
		layer := s.Sub(fmt.Sprintf("mlp_fc%d", i))
		if h, err = network.FC(layer, h, hidden, nil); err != nil {
			return nil, err
		}
		if layerNorm {
			if h, err = network.LayerNorm(layer, h); err != nil {
				return nil, err
			}
		}
		if h, err = act.Fwd(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}
