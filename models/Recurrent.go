package models

import (
	"fmt"

	"github.com/thangduong/baselines/initwfn"
	"github.com/thangduong/baselines/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// extractor adds the feature extractor of a recurrent network to the
// graph of s
type extractor func(s *network.Scope, x *G.Node) (*G.Node, error)

// LSTMNet returns a network function for a single LSTM cell of
// config.NumLSTM units applied to the flattened input. If
// config.LayerNorm is set the cell is layer normalized.
//
// The batch of X must hold Inputs.NumEnvs environments of an equal
// number of steps in environment-major order. The returned Network
// carries a RecurrentState which the caller must feed at every call:
// the value of Next after one call is the State of the following one.
// The mask and state inputs are named M and S under the cell scope,
// for example "pi/lstm/M".
func LSTMNet(config Config) (Func, error) {
	return recurrent("lstm", config, config.LayerNorm, 1,
		func(s *network.Scope, x *G.Node) (*G.Node, error) {
			return network.Flatten(x)
		})
}

// CNNLSTM returns a network function applying an LSTM cell to the
// features of the CNN from the DQN Nature paper.
func CNNLSTM(config Config) (Func, error) {
	return recurrent("cnn_lstm", config, config.LayerNorm, 4, natureFeatures)
}

// CNNLNLSTM is CNNLSTM with a layer normalized LSTM cell, regardless of
// config.LayerNorm.
func CNNLNLSTM(config Config) (Func, error) {
	return recurrent("cnn_lnlstm", config, true, 4, natureFeatures)
}

func natureFeatures(s *network.Scope, x *G.Node) (*G.Node, error) {
	return convFeatures(s, x, natureConvs, 512)
}

// recurrent returns a network function that applies extract followed by
// an LSTM cell
func recurrent(name string, config Config, layerNorm bool, minRank int,
	extract extractor) (Func, error) {
	units := config.NumLSTM
	if units <= 0 {
		return nil, fmt.Errorf("%w: %v: invalid number of LSTM units"+
			"\n\twant(> 0)\n\thave(%d)", ErrInvalidConfig, name, units)
	}

	cellScope := "lstm"
	if layerNorm {
		cellScope = "lnlstm"
	}

	return func(in Inputs) (*Network, error) {
		x, err := in.observation(minRank)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		nenv, err := in.envs()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		nbatch := x.Shape()[0]
		if nbatch%nenv != 0 {
			return nil, fmt.Errorf("%w: %v: batch size %d is not divisible "+
				"by the number of environments %d", ErrInvalidConfig, name,
				nbatch, nenv)
		}
		nsteps := nbatch / nenv

		s := config.scope(x.Graph())
		g := x.Graph()

		// Cell weights are orthogonal with unit gain whatever the
		// configured initializer
		cellInit, err := initwfn.NewOrthogonal(1, 0)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", name, err)
		}
		cell := s.Sub(cellScope).WithInit(cellInit.InitWFn())

		mask := G.NewVector(g, tensor.Float64, G.WithShape(nbatch),
			G.WithName(qualify(cell, "M")))
		state := G.NewMatrix(g, tensor.Float64, G.WithShape(nenv, 2*units),
			G.WithName(qualify(cell, "S")))

		h, err := extract(s, x)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, name, err)
		}

		xs, err := network.BatchToSeq(h, nenv, nsteps)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, name, err)
		}
		ms, err := network.BatchToSeq(mask, nenv, nsteps)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, name, err)
		}

		hs, next, err := network.LSTM(cell, xs, ms, state, units, layerNorm)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, name, err)
		}
		out, err := network.SeqToBatch(hs)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", name, err)
		}

		return &Network{
			Output:     out,
			Learnables: s.Learnables(),
			State: &RecurrentState{
				Mask:  mask,
				State: state,
				Next:  next,
				Initial: tensor.New(
					tensor.Of(tensor.Float64),
					tensor.WithShape(nenv, 2*units),
				),
			},
		}, nil
	}, nil
}

// qualify returns name nested under the Scope s
func qualify(s *network.Scope, name string) string {
	if s.Name() == "" {
		return name
	}
	return s.Name() + "/" + name
}
