// Command netbuild lists the registered network builders and builds a
// single network on a fresh graph, reporting its output shape and
// number of learnable parameters.
//
//	netbuild --list
//	netbuild --network cnn_1d_ac.critic --input-shape 8,10,6 --action-dim 1
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/thangduong/baselines/internal/logging"
	"github.com/thangduong/baselines/models"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "netbuild: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	opts := NewOptions()
	fs := pflag.NewFlagSet("netbuild", pflag.ContinueOnError)
	opts.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	log, err := logging.New(opts.LogLevel)
	if err != nil {
		return err
	}
	reg := models.NewDefaultRegistry(log)

	if opts.List {
		for _, name := range reg.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	config, err := opts.loadConfig()
	if err != nil {
		return err
	}
	fn, err := reg.Build(models.Named(opts.Network), config)
	if err != nil {
		return err
	}

	net, err := fn(opts.inputs(G.NewGraph()))
	if err != nil {
		return err
	}
	return report(out, opts.Network, net)
}

// report writes a summary of net to out
func report(out io.Writer, name string, net *models.Network) error {
	params := 0
	for _, n := range net.Learnables {
		params += n.Shape().TotalSize()
	}

	fmt.Fprintf(out, "network:     %v\n", name)
	fmt.Fprintf(out, "output:      %v\n", net.Output.Shape())
	fmt.Fprintf(out, "learnables:  %d nodes, %d parameters\n",
		len(net.Learnables), params)
	if net.State != nil {
		fmt.Fprintf(out, "state:       %v\n", net.State.State.Shape())
	}
	return nil
}

// inputs returns the input nodes described by opts on the graph g
func (opts *Options) inputs(g *G.ExprGraph) models.Inputs {
	shape := append([]int(nil), opts.InputShape...)
	in := models.Inputs{
		X: G.NewTensor(g, tensor.Float64, len(shape), G.WithShape(shape...),
			G.WithName("X")),
		NumEnvs: opts.Envs,
	}
	if opts.ActionDim > 0 {
		in.Action = G.NewMatrix(g, tensor.Float64,
			G.WithShape(shape[0], opts.ActionDim), G.WithName("A"))
	}
	return in
}

// loadConfig returns the configuration file of opts, or the default
// configuration if no file is given
func (opts *Options) loadConfig() (models.Config, error) {
	if opts.Config == "" {
		return models.DefaultConfig(), nil
	}

	f, err := os.Open(opts.Config)
	if err != nil {
		return models.Config{}, fmt.Errorf("could not open config: %v", err)
	}
	defer f.Close()
	return models.LoadConfig(f)
}
