package models

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// input returns a new input node of the given shape on g, filled with
// backing if backing is not nil
func input(t *testing.T, g *G.ExprGraph, name string, backing []float64,
	shape ...int) *G.Node {
	t.Helper()

	n := G.NewTensor(g, tensor.Float64, len(shape), G.WithShape(shape...),
		G.WithName(name))
	if backing != nil {
		let(t, n, backing)
	}
	return n
}

// let sets the value of the input node n
func let(t *testing.T, n *G.Node, backing []float64) {
	t.Helper()

	value := tensor.New(tensor.WithShape(n.Shape()...),
		tensor.WithBacking(backing))
	if err := G.Let(n, value); err != nil {
		t.Fatalf("let %v: %v", n.Name(), err)
	}
}

// run executes the graph g and returns the value of out
func run(t *testing.T, g *G.ExprGraph, out *G.Node) []float64 {
	t.Helper()

	var value G.Value
	G.Read(out, &value)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, ok := value.Data().([]float64)
	if !ok {
		return []float64{value.Data().(float64)}
	}
	return append([]float64(nil), data...)
}

func build(t *testing.T, name string, config Config) Func {
	t.Helper()

	fn, err := NewDefaultRegistry(logr.Discard()).Build(Named(name), config)
	if err != nil {
		t.Fatalf("build %v: %v", name, err)
	}
	return fn
}

func randomBacking(rng *rand.Rand, size int) []float64 {
	backing := make([]float64, size)
	for i := range backing {
		backing[i] = rng.Float64()*2 - 1
	}
	return backing
}

func TestMLPZeroLayersIsFlatten(t *testing.T) {
	config := DefaultConfig()
	config.NumLayers = 0
	fn := build(t, MLPName, config)

	backing := []float64{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	g := G.NewGraph()
	x := input(t, g, "X", backing, 2, 3, 2)

	net, err := fn(Inputs{X: x})
	if err != nil {
		t.Fatalf("mlp: %v", err)
	}
	if len(net.Learnables) != 0 {
		t.Errorf("mlp: expected no learnables, got %d", len(net.Learnables))
	}
	if net.State != nil {
		t.Error("mlp: expected no recurrent state")
	}
	if !net.Output.Shape().Eq(tensor.Shape{2, 6}) {
		t.Fatalf("mlp: expected output shape (2, 6), got %v",
			net.Output.Shape())
	}

	if got := run(t, g, net.Output); !floats.Equal(got, backing) {
		t.Errorf("mlp: expected identity-flatten\n\twant(%v)\n\thave(%v)",
			backing, got)
	}
}

func TestMLPShapes(t *testing.T) {
	for _, layerNorm := range []bool{false, true} {
		config := DefaultConfig()
		config.NumLayers = 3
		config.NumHidden = 7
		config.LayerNorm = layerNorm
		fn := build(t, MLPName, config)

		g := G.NewGraph()
		x := input(t, g, "X", nil, 5, 4)
		net, err := fn(Inputs{X: x})
		if err != nil {
			t.Fatalf("mlp: %v", err)
		}

		if !net.Output.Shape().Eq(tensor.Shape{5, 7}) {
			t.Errorf("mlp: expected output shape (5, 7), got %v",
				net.Output.Shape())
		}

		// Weights and biases, plus gain and bias of each layer norm
		want := 6
		if layerNorm {
			want = 12
		}
		if len(net.Learnables) != want {
			t.Errorf("mlp (layer norm %v): expected %d learnables, got %d",
				layerNorm, want, len(net.Learnables))
		}
		if len(net.Model()) != want {
			t.Errorf("model: expected %d nodes, got %d", want,
				len(net.Model()))
		}
	}
}

func TestMLPInvalidConfig(t *testing.T) {
	for _, config := range []Config{
		{NumLayers: -1, NumHidden: 64},
		{NumLayers: 2, NumHidden: 0},
	} {
		if _, err := MLP(config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("mlp %+v: expected ErrInvalidConfig, got %v", config, err)
		}
	}

	fn := build(t, MLPName, DefaultConfig())
	if _, err := fn(Inputs{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("mlp: expected ErrInvalidConfig for missing input, got %v",
			err)
	}
}

func TestScopedLearnables(t *testing.T) {
	g := G.NewGraph()
	x := input(t, g, "X", nil, 2, 4)

	var names []string
	for _, scope := range []string{"pi", "vf"} {
		config := DefaultConfig()
		config.NumLayers = 1
		config.Scope = scope

		net, err := build(t, MLPName, config)(Inputs{X: x})
		if err != nil {
			t.Fatalf("mlp %v: %v", scope, err)
		}
		for _, n := range net.Learnables {
			names = append(names, n.Name())
		}
	}

	want := []string{
		"pi/mlp_fc0/w", "pi/mlp_fc0/b",
		"vf/mlp_fc0/w", "vf/mlp_fc0/b",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("learnables: unexpected names (-want +got):\n%s", diff)
	}
}

func TestSimpleRMS(t *testing.T) {
	fn := build(t, SimpleRMSName, DefaultConfig())

	// Two environments, a history of two steps and six features. Only
	// the last step of each history is read.
	backing := []float64{
		0, 0, 0, 99, 0, 99,
		0, 0, 0, 10, 0, 4,

		0, 0, 0, -7, 0, 3,
		0, 0, 0, 0.5, 0, 1.0,
	}
	g := G.NewGraph()
	x := input(t, g, "X", backing, 2, 2, 6)

	net, err := fn(Inputs{X: x})
	if err != nil {
		t.Fatalf("simple_rms: %v", err)
	}
	if len(net.Learnables) != 0 {
		t.Errorf("simple_rms: expected no learnables, got %d",
			len(net.Learnables))
	}

	want := []float64{6, -0.5}
	if got := run(t, g, net.Output); !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("simple_rms: unexpected output\n\twant(%v)\n\thave(%v)",
			want, got)
	}
}

func TestSimpleRMSInvalidInput(t *testing.T) {
	fn := build(t, SimpleRMSName, DefaultConfig())

	g := G.NewGraph()
	for i, shape := range [][]int{{2, 6}, {2, 3, 5}} {
		x := input(t, g, fmt.Sprintf("X%d", i), nil, shape...)
		if _, err := fn(Inputs{X: x}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("simple_rms %v: expected ErrInvalidConfig, got %v",
				shape, err)
		}
	}
}

func TestCNN1DShapes(t *testing.T) {
	const (
		batch  = 3
		buffer = 10
	)

	for _, spec := range conv1DSpecs {
		g := G.NewGraph()
		in := Inputs{X: input(t, g, "X", nil, batch, buffer, 6)}
		if spec.critic {
			in.Action = input(t, g, "A", nil, batch, 1)
		}

		net, err := build(t, spec.name, DefaultConfig())(in)
		if err != nil {
			t.Errorf("%v: %v", spec.name, err)
			continue
		}

		if !net.Output.Shape().Eq(tensor.Shape{batch, 16}) {
			t.Errorf("%v: expected output shape (%d, 16), got %v", spec.name,
				batch, net.Output.Shape())
		}

		// Each conv and fc layer has a weight and a bias
		want := 2 * (len(spec.convs) + len(spec.fcs))
		if spec.hybrid {
			want = 2 * (2 + len(spec.fcs))
		}
		if len(net.Learnables) != want {
			t.Errorf("%v: expected %d learnables, got %d", spec.name, want,
				len(net.Learnables))
		}
	}
}

func TestCNN1DRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	g := G.NewGraph()
	x := input(t, g, "X", randomBacking(rng, 4*8*6), 4, 8, 6)
	action := input(t, g, "A", randomBacking(rng, 4), 4, 1)

	net, err := build(t, CNN1DSmallHybridCriticName, DefaultConfig())(
		Inputs{X: x, Action: action})
	if err != nil {
		t.Fatalf("%v: %v", CNN1DSmallHybridCriticName, err)
	}

	for _, v := range run(t, g, net.Output) {
		if v <= -1 || v >= 1 {
			t.Errorf("%v: output %v outside (-1, 1)",
				CNN1DSmallHybridCriticName, v)
		}
	}
}

func TestCriticRequiresAction(t *testing.T) {
	for _, spec := range conv1DSpecs {
		if !spec.critic {
			continue
		}

		g := G.NewGraph()
		x := input(t, g, "X", nil, 3, 10, 6)
		fn := build(t, spec.name, DefaultConfig())

		if _, err := fn(Inputs{X: x}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%v: expected ErrInvalidConfig without action, got %v",
				spec.name, err)
		}

		wrongBatch := input(t, g, "A", nil, 2, 1)
		if _, err := fn(Inputs{X: x, Action: wrongBatch}); !errors.Is(err,
			ErrInvalidConfig) {
			t.Errorf("%v: expected ErrInvalidConfig for action batch 2, "+
				"got %v", spec.name, err)
		}
	}
}

func TestActorIgnoresAction(t *testing.T) {
	g := G.NewGraph()
	x := input(t, g, "X", nil, 3, 10, 6)
	action := input(t, g, "A", nil, 3, 1)

	net, err := build(t, CNN1DACActorName, DefaultConfig())(
		Inputs{X: x, Action: action})
	if err != nil {
		t.Fatalf("%v: %v", CNN1DACActorName, err)
	}
	if !net.Output.Shape().Eq(tensor.Shape{3, 16}) {
		t.Errorf("%v: expected output shape (3, 16), got %v",
			CNN1DACActorName, net.Output.Shape())
	}
}

func TestCNNShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		want  tensor.Shape
	}{
		{CNNName, []int{2, 84, 84, 4}, tensor.Shape{2, 512}},
		{CNNSmallName, []int{2, 84, 84, 4}, tensor.Shape{2, 128}},
		{ConvOnlyName, []int{2, 84, 84, 4}, tensor.Shape{2, 64, 11, 11}},
	}

	for _, test := range tests {
		g := G.NewGraph()
		x := input(t, g, "X", nil, test.shape...)

		net, err := build(t, test.name, DefaultConfig())(Inputs{X: x})
		if err != nil {
			t.Errorf("%v: %v", test.name, err)
			continue
		}
		if !net.Output.Shape().Eq(test.want) {
			t.Errorf("%v: expected output shape %v, got %v", test.name,
				test.want, net.Output.Shape())
		}
	}
}

func TestCNNExecution(t *testing.T) {
	tests := []struct {
		name string
		want tensor.Shape
	}{
		{CNNName, tensor.Shape{1, 512}},
		{CNNSmallName, tensor.Shape{1, 128}},
		{ConvOnlyName, tensor.Shape{1, 64, 11, 11}},
	}
	rng := rand.New(rand.NewSource(3))

	for _, test := range tests {
		backing := randomBacking(rng, 84*84*4)
		for i := range backing {
			backing[i] = (backing[i] + 1) * 127.5
		}

		g := G.NewGraph()
		x := input(t, g, "X", backing, 1, 84, 84, 4)
		net, err := build(t, test.name, DefaultConfig())(Inputs{X: x})
		if err != nil {
			t.Fatalf("%v: %v", test.name, err)
		}
		if !net.Output.Shape().Eq(test.want) {
			t.Errorf("%v: expected output shape %v, got %v", test.name,
				test.want, net.Output.Shape())
		}

		got := run(t, g, net.Output)
		if len(got) != test.want.TotalSize() {
			t.Errorf("%v: expected %d outputs, got %d", test.name,
				test.want.TotalSize(), len(got))
		}
		for _, v := range got {
			if v < 0 || math.IsNaN(v) {
				t.Errorf("%v: ReLU output %v should be non-negative",
					test.name, v)
				break
			}
		}
	}
}

// conv_only pads its input, so images smaller than a kernel still build
func TestConvOnlySmallImage(t *testing.T) {
	g := G.NewGraph()
	x := input(t, g, "X", nil, 1, 6, 6, 3)

	net, err := build(t, ConvOnlyName, DefaultConfig())(Inputs{X: x})
	if err != nil {
		t.Fatalf("conv_only: %v", err)
	}
	if !net.Output.Shape().Eq(tensor.Shape{1, 64, 1, 1}) {
		t.Errorf("conv_only: expected output shape (1, 64, 1, 1), got %v",
			net.Output.Shape())
	}
}

func TestSimpleRMSSingleObservation(t *testing.T) {
	fn := build(t, SimpleRMSName, DefaultConfig())

	g := G.NewGraph()
	x := input(t, g, "X", []float64{0, 0, 0, 2.5, 0, 1}, 1, 1, 6)
	net, err := fn(Inputs{X: x})
	if err != nil {
		t.Fatalf("simple_rms: %v", err)
	}

	want := []float64{1.5}
	if got := run(t, g, net.Output); !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("simple_rms: unexpected output\n\twant(%v)\n\thave(%v)",
			want, got)
	}
}

func TestCNN1DSingleBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, spec := range conv1DSpecs {
		g := G.NewGraph()
		in := Inputs{X: input(t, g, "X", randomBacking(rng, 10*6), 1, 10, 6)}
		if spec.critic {
			in.Action = input(t, g, "A", randomBacking(rng, 1), 1, 1)
		}

		net, err := build(t, spec.name, DefaultConfig())(in)
		if err != nil {
			t.Fatalf("%v: %v", spec.name, err)
		}
		got := run(t, g, net.Output)
		if len(got) != 16 {
			t.Errorf("%v: expected 16 outputs, got %d", spec.name, len(got))
		}
	}
}

func TestCNNKernelTooLarge(t *testing.T) {
	g := G.NewGraph()
	x := input(t, g, "X", nil, 1, 16, 16, 3)

	_, err := build(t, CNNName, DefaultConfig())(Inputs{X: x})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("cnn: expected ErrInvalidConfig for 16x16 images, got %v", err)
	}
}

func TestConvOnlyRequiresConvs(t *testing.T) {
	config := DefaultConfig()
	config.Convs = nil
	if _, err := ConvOnly(config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("conv_only: expected ErrInvalidConfig, got %v", err)
	}
}
