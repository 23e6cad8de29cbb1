package models

import (
	"fmt"

	"github.com/thangduong/baselines/network"
	G "gorgonia.org/gorgonia"
)

// pixelScale is the range of raw image observations
const pixelScale = 255.0

// natureConvs are the convolutions of the CNN from the DQN Nature paper
var natureConvs = []ConvSpec{
	{Filters: 32, Kernel: 8, Stride: 4},
	{Filters: 64, Kernel: 4, Stride: 2},
	{Filters: 64, Kernel: 3, Stride: 1},
}

// smallConvs are the convolutions of CNNSmall
var smallConvs = []ConvSpec{
	{Filters: 8, Kernel: 8, Stride: 4},
	{Filters: 16, Kernel: 4, Stride: 2},
}

// CNN returns a network function for the CNN from the DQN Nature paper.
// The input is a batch of NHWC images with values in [0, 255]. Images
// are scaled to [0, 1] and passed through three ReLU convolutions and a
// 512 unit ReLU fully connected layer.
func CNN(config Config) (Func, error) {
	return imageNet("cnn", natureConvs, 512, config), nil
}

// CNNSmall returns a network function for a smaller variant of CNN with
// two convolutions and a 128 unit fully connected layer.
func CNNSmall(config Config) (Func, error) {
	return imageNet("cnn_small", smallConvs, 128, config), nil
}

// ConvOnly returns a network function consisting only of the ReLU
// convolutions config.Convs applied to scaled NHWC images. Convolutions
// use SAME padding and Glorot uniform weights. The output is the NCHW
// output of the last convolution.
func ConvOnly(config Config) (Func, error) {
	if len(config.Convs) == 0 {
		return nil, fmt.Errorf("%w: conv_only: no convolutions configured",
			ErrInvalidConfig)
	}
	convs := append([]ConvSpec(nil), config.Convs...)

	return func(in Inputs) (*Network, error) {
		x, err := in.observation(4)
		if err != nil {
			return nil, fmt.Errorf("conv_only: %w", err)
		}

		s := config.scope(x.Graph()).Sub("convnet").WithInit(G.GlorotU(1.0))
		h, err := convStack(s, x, convs, network.Same)
		if err != nil {
			return nil, fmt.Errorf("%w: conv_only: %v", ErrInvalidConfig, err)
		}
		return &Network{Output: h, Learnables: s.Learnables()}, nil
	}, nil
}

// imageNet returns a network function that scales images, applies the
// convolutions convs and a single fully connected layer of hidden units
func imageNet(name string, convs []ConvSpec, hidden int,
	config Config) Func {
	return func(in Inputs) (*Network, error) {
		x, err := in.observation(4)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}

		s := config.scope(x.Graph())
		h, err := convFeatures(s, x, convs, hidden)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrInvalidConfig, name, err)
		}
		return &Network{Output: h, Learnables: s.Learnables()}, nil
	}
}

// convFeatures adds scaled convolutions followed by a flatten and a ReLU
// fully connected layer to the graph of s
func convFeatures(s *network.Scope, x *G.Node, convs []ConvSpec,
	hidden int) (*G.Node, error) {
	h, err := convStack(s, x, convs, network.Valid)
	if err != nil {
		return nil, err
	}
	if h, err = network.Flatten(h); err != nil {
		return nil, err
	}
	return network.FC(s.Sub("fc1"), h, hidden, network.ReLU())
}

// convStack scales NHWC images to [0, 1], converts them to NCHW and
// applies the ReLU convolutions convs
func convStack(s *network.Scope, x *G.Node, convs []ConvSpec,
	pad network.Padding) (*G.Node, error) {
	h, err := G.Transpose(x, 0, 3, 1, 2)
	if err != nil {
		return nil, err
	}
	if h, err = G.Div(h, G.NewConstant(pixelScale)); err != nil {
		return nil, err
	}

	for i, conv := range convs {
		layer := s.Sub(fmt.Sprintf("c%d", i+1))
		h, err = network.Conv2D(layer, h, conv.Filters, conv.Kernel,
			conv.Stride, pad, network.ReLU())
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}
