package models

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/thangduong/baselines/initwfn"
	"github.com/thangduong/baselines/network"
	G "gorgonia.org/gorgonia"
)

// ConvSpec describes a single convolution layer
type ConvSpec struct {
	Filters int
	Kernel  int
	Stride  int
}

// Config is the configuration shared by all builders. Each builder reads
// only the fields relevant to it and ignores the rest.
//
// A Config is JSON serializable: the activation is stored by name and
// the weight initializer in the format of package initwfn, e.g.
//
//	{
//		"NumLayers": 3,
//		"Activation": "relu",
//		"Init": {"Type": "GlorotU", "Config": {"Gain": 1}}
//	}
type Config struct {
	// NumLayers is the number of fully connected layers of mlp
	NumLayers int

	// NumHidden is the width of each fully connected layer of mlp
	NumHidden int

	// Activation is applied after each fully connected layer of mlp
	Activation *network.Activation

	// LayerNorm enables layer normalization in mlp and the recurrent
	// builders
	LayerNorm bool

	// Convs are the (filters, kernel, stride) convolutions of conv_only
	Convs []ConvSpec

	// NumLSTM is the number of hidden units of the recurrent builders
	NumLSTM int

	// Init initializes the fully connected weights of every builder and
	// the convolution weights of cnn, cnn_small and the recurrent
	// feature extractors. A nil Init uses orthogonal initialization with
	// gain √2. Builds sharing an Init draw from one random stream.
	Init *initwfn.InitWFn

	// Scope prefixes the names of all learnable nodes, so that several
	// networks can share one graph.
	Scope string
}

// DefaultConfig returns the default configuration of all builders
func DefaultConfig() Config {
	return Config{
		NumLayers:  2,
		NumHidden:  64,
		Activation: network.TanH(),
		LayerNorm:  false,
		Convs: []ConvSpec{
			{Filters: 32, Kernel: 8, Stride: 4},
			{Filters: 64, Kernel: 4, Stride: 2},
			{Filters: 64, Kernel: 3, Stride: 1},
		},
		NumLSTM: 128,
		Init:    defaultInit(),
	}
}

// LoadConfig decodes a JSON Config from r. Fields absent from the
// document keep their DefaultConfig values.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode config: %v",
			err)
	}
	return config, nil
}

// initWFn returns the Gorgonia weight initializer of the Config
func (c Config) initWFn() G.InitWFn {
	if c.Init == nil {
		return defaultInit().InitWFn()
	}
	return c.Init.InitWFn()
}

// scope returns a new root Scope for building on the graph g
func (c Config) scope(g *G.ExprGraph) *network.Scope {
	return network.NewScope(g, c.Scope, c.initWFn())
}

func defaultInit() *initwfn.InitWFn {
	init, err := initwfn.NewOrthogonal(math.Sqrt2, 0)
	if err != nil {
		panic(fmt.Sprintf("defaultInit: %v", err))
	}
	return init
}
