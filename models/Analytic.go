package models

import (
	"fmt"

	"github.com/thangduong/baselines/network"
	"github.com/thangduong/baselines/utils/tensorutils"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Feature indices of the NStats observation read by SimpleRMS
const (
	recvRateFeature = 3
	sendRateFeature = 5
)

// SimpleRMS returns a network function with no learnable parameters that
// computes, for each batch element b of an input of shape (batch,
// buffer, features),
//
//	X[b, buffer-1, 3] * 1.0 - X[b, buffer-1, 5]
//
// the difference between the received and sent rates of the most
// recent NStats observation. The output has shape (batch).
func SimpleRMS(config Config) (Func, error) {
	return func(in Inputs) (*Network, error) {
		x, err := in.observation(3)
		if err != nil {
			return nil, fmt.Errorf("simple_rms: %w", err)
		}
		shape := x.Shape()
		if len(shape) != 3 || shape[2] <= sendRateFeature {
			return nil, fmt.Errorf("%w: simple_rms: input must be (batch, "+
				"buffer, >= %d features), have shape %v", ErrInvalidConfig,
				sendRateFeature+1, shape)
		}

		recv, err := lastFeature(x, recvRateFeature)
		if err != nil {
			return nil, fmt.Errorf("simple_rms: %v", err)
		}
		send, err := lastFeature(x, sendRateFeature)
		if err != nil {
			return nil, fmt.Errorf("simple_rms: %v", err)
		}

		scaled, err := G.Mul(recv, G.NewConstant(1.0))
		if err != nil {
			return nil, fmt.Errorf("simple_rms: %v", err)
		}
		delta, err := G.Sub(scaled, send)
		if err != nil {
			return nil, fmt.Errorf("simple_rms: %v", err)
		}

		return &Network{Output: delta}, nil
	}, nil
}

// lastFeature returns x[:, -1, feature] as a vector of shape (batch)
func lastFeature(x *G.Node, feature int) (*G.Node, error) {
	shape := x.Shape()
	batch, buffer, features := shape[0], shape[1], shape[2]

	rows, err := G.Reshape(x, tensor.Shape{batch, buffer * features})
	if err != nil {
		return nil, err
	}
	col, err := network.SelectCols(rows,
		tensorutils.Index((buffer-1)*features+feature))
	if err != nil {
		return nil, err
	}
	return G.Reshape(col, tensor.Shape{batch})
}
