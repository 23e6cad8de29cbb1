// Package controller implements a heuristic congestion controller for
// the NStats environment.
//
// The controller reads the most recent row of the observation history,
// compares the received rate against the send rate and adjusts the send
// rate accordingly. It keeps no state between steps beyond what the
// environment holds.
package controller

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Feature indices of the received and send rates in an NStats
// observation row
const (
	RecvRateIndex = 3
	SendRateIndex = 5
)

// Rule is the decision rule of the controller. If the received rate is
// at least Threshold times the send rate, the link is keeping up and the
// rule probes for more bandwidth with the fixed action Probe. Otherwise
// the action is Gain times the (negative) difference between the
// received and send rates.
type Rule struct {
	RecvIndex int
	SendIndex int
	Threshold float64
	Probe     float64
	Gain      float64
}

// DefaultRule returns the Rule used for NStats
func DefaultRule() Rule {
	return Rule{
		RecvIndex: RecvRateIndex,
		SendIndex: SendRateIndex,
		Threshold: 0.95,
		Probe:     0.1,
		Gain:      0.9,
	}
}

// Decide returns the action for a received rate recv and a send rate
// send
func (r Rule) Decide(recv, send float64) float64 {
	if recv >= r.Threshold*send {
		return r.Probe
	}
	return (recv - send) * r.Gain
}

// Action returns the action for the last row of the observation history
// obs
func (r Rule) Action(obs mat.Matrix) (float64, error) {
	if obs == nil {
		return 0, fmt.Errorf("action: no observation")
	}
	rows, cols := obs.Dims()
	if rows == 0 {
		return 0, fmt.Errorf("action: empty observation")
	}
	if r.RecvIndex < 0 || r.RecvIndex >= cols ||
		r.SendIndex < 0 || r.SendIndex >= cols {
		return 0, fmt.Errorf("action: observation has %d features, need "+
			"indices %d and %d", cols, r.RecvIndex, r.SendIndex)
	}

	last := rows - 1
	return r.Decide(obs.At(last, r.RecvIndex), obs.At(last, r.SendIndex)), nil
}
