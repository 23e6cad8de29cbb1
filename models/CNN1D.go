package models

import (
	"fmt"

	"github.com/thangduong/baselines/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// conv1DSpec describes a 1-D sequence network: a feature trunk, an
// optional concatenation of an action, then linear fully connected
// layers squashed by tanh.
//
// The trunk is either a stack of ReLU 1-D convolutions whose last layer
// has a single filter, or (when hybrid is set) a 2 layer, 64 unit tanh
// MLP over the flattened input.
type conv1DSpec struct {
	name   string
	convs  [][2]int // (filters, kernel) of each convolution
	hybrid bool
	critic bool
	fcs    []int
}

var (
	threeConvs   = [][2]int{{5, 3}, {5, 3}, {1, 3}}
	fiveConvs    = [][2]int{{20, 5}, {15, 3}, {10, 3}, {5, 3}, {1, 3}}
	smallConvs1D = [][2]int{{15, 3}, {10, 3}, {5, 3}, {1, 3}}
	largeConvs1D = [][2]int{{100, 3}, {50, 3}, {25, 3}, {1, 3}}
)

// conv1DSpecs are the pre-tuned 1-D sequence networks
var conv1DSpecs = []conv1DSpec{
	{name: CNN1DName, convs: threeConvs, fcs: []int{16}},
	{name: CNN1DV1Name, convs: fiveConvs, fcs: []int{16}},

	{name: CNN1DSmallACActorName, convs: threeConvs, fcs: []int{16}},
	{name: CNN1DSmallACCriticName, convs: threeConvs, critic: true,
		fcs: []int{32, 16}},

	{name: CNN1DACActorName, convs: fiveConvs, fcs: []int{16}},
	{name: CNN1DACCriticName, convs: fiveConvs, critic: true,
		fcs: []int{32, 24, 16}},

	{name: CNN1DSmallHybridActorName, convs: smallConvs1D, fcs: []int{16, 16}},
	{name: CNN1DSmallHybridCriticName, hybrid: true, critic: true,
		fcs: []int{16}},

	{name: CNN1DLargeHybridActorName, convs: largeConvs1D, fcs: []int{32, 16}},
	{name: CNN1DLargeHybridCriticName, hybrid: true, critic: true,
		fcs: []int{32, 16}},
}

// builder returns the Builder of the 1-D sequence network. The network
// takes inputs of shape (batch, buffer, features). Only config.Scope
// and config.Init are read from the configuration; the architecture
// itself is fixed.
func (c conv1DSpec) builder() Builder {
	return func(config Config) (Func, error) {
		return func(in Inputs) (*Network, error) {
			x, err := in.observation(3)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", c.name, err)
			}
			if x.Dims() != 3 {
				return nil, fmt.Errorf("%w: %v: input must be (batch, buffer, "+
					"features), have shape %v", ErrInvalidConfig, c.name,
					x.Shape())
			}

			var action *G.Node
			if c.critic {
				if action, err = in.action(x.Shape()[0]); err != nil {
					return nil, fmt.Errorf("%v: %w", c.name, err)
				}
			}

			s := config.scope(x.Graph())
			out, err := c.fwd(s, x, action)
			if err != nil {
				return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, c.name,
					err)
			}
			return &Network{Output: out, Learnables: s.Learnables()}, nil
		}, nil
	}
}

// fwd adds the network to the graph of s
func (c conv1DSpec) fwd(s *network.Scope, x, action *G.Node) (*G.Node,
	error) {
	var h *G.Node
	var err error
	if c.hybrid {
		h, err = mlp(s, x, 2, 64, network.TanH(), false)
	} else {
		h, err = c.convTrunk(s, x)
	}
	if err != nil {
		return nil, err
	}

	if action != nil {
		if h, err = network.ConcatCols(h, action); err != nil {
			return nil, err
		}
	}

	for i, units := range c.fcs {
		layer := s.Sub(fmt.Sprintf("cnn1d_fc%d", i+1))
		if h, err = network.FC(layer, h, units, nil); err != nil {
			return nil, err
		}
	}
	return G.Tanh(h)
}

// convTrunk applies the 1-D convolutions of c and reshapes the single
// channel output to (batch, buffer)
func (c conv1DSpec) convTrunk(s *network.Scope, x *G.Node) (*G.Node,
	error) {
	// Convolutions use Glorot uniform weights rather than the configured
	// initializer
	convScope := s.WithInit(G.GlorotU(1.0))

	h := x
	var err error
	for i, conv := range c.convs {
		layer := convScope.Sub(fmt.Sprintf("cnn1d_c%d", i+1))
		if h, err = network.Conv1D(layer, h, conv[0], conv[1],
			network.ReLU()); err != nil {
			return nil, err
		}
	}

	batch, buffer := x.Shape()[0], x.Shape()[1]
	return G.Reshape(h, tensor.Shape{batch, buffer})
}
