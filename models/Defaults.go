package models

import "github.com/go-logr/logr"

// Names of the default builders
const (
	MLPName       = "mlp"
	CNNName       = "cnn"
	CNNSmallName  = "cnn_small"
	ConvOnlyName  = "conv_only"
	LSTMName      = "lstm"
	CNNLSTMName   = "cnn_lstm"
	CNNLNLSTMName = "cnn_lnlstm"
	SimpleRMSName = "simple_rms"

	CNN1DName                  = "cnn_1d"
	CNN1DV1Name                = "cnn_1d_v1"
	CNN1DSmallACActorName      = "cnn_1d_small_ac.actor"
	CNN1DSmallACCriticName     = "cnn_1d_small_ac.critic"
	CNN1DACActorName           = "cnn_1d_ac.actor"
	CNN1DACCriticName          = "cnn_1d_ac.critic"
	CNN1DSmallHybridActorName  = "cnn_1d_small_ac_hybrid.actor"
	CNN1DSmallHybridCriticName = "cnn_1d_small_ac_hybrid.critic"
	CNN1DLargeHybridActorName  = "cnn_1d_large_ac_hybrid.actor"
	CNN1DLargeHybridCriticName = "cnn_1d_large_ac_hybrid.critic"
)

// RegisterDefaults registers every builder of this package with r
func RegisterDefaults(r *Registry) {
	r.Register(MLPName)(MLP)
	r.Register(CNNName)(CNN)
	r.Register(CNNSmallName)(CNNSmall)
	r.Register(ConvOnlyName)(ConvOnly)
	r.Register(LSTMName)(LSTMNet)
	r.Register(CNNLSTMName)(CNNLSTM)
	r.Register(CNNLNLSTMName)(CNNLNLSTM)
	r.Register(SimpleRMSName)(SimpleRMS)

	for _, spec := range conv1DSpecs {
		r.Register(spec.name)(spec.builder())
	}
}

// NewDefaultRegistry returns a new Registry holding the builders of
// this package
func NewDefaultRegistry(log logr.Logger) *Registry {
	r := NewRegistry(log)
	RegisterDefaults(r)
	return r
}
