package initwfn

import (
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// OrthogonalConfig implements a configuration of the orthogonal
// initialization algorithm. Weights of shape (d0, d1, ..., dn) are
// viewed as a d0 x (d1*...*dn) matrix whose rows (or columns, whichever
// are fewer) are orthonormal, then scaled by Gain.
type OrthogonalConfig struct {
	Gain float64
	Seed uint64
}

// NewOrthogonal returns a new orthogonal weight initializer
func NewOrthogonal(gain float64, seed uint64) (*InitWFn, error) {
	config := OrthogonalConfig{
		Gain: gain,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (o OrthogonalConfig) Type() Type {
	return Orthogonal
}

// Validate checks that the gain is positive
func (o OrthogonalConfig) Validate() error {
	return validateGain(o.Gain)
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Successive calls of the returned InitWFn draw from the same
// random stream, so that distinct layers receive distinct weights. The
// returned InitWFn is safe for concurrent use; each call draws its
// matrix from the stream without interleaving with other calls.
func (o OrthogonalConfig) Create() G.InitWFn {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(o.Seed)}
	var mu sync.Mutex

	return func(dt tensor.Dtype, s ...int) interface{} {
		mu.Lock()
		values := orthogonal(normal, o.Gain, s...)
		mu.Unlock()

		switch dt {
		case tensor.Float64:
			return values
		case tensor.Float32:
			out := make([]float32, len(values))
			for i := range values {
				out[i] = float32(values[i])
			}
			return out
		default:
			panic("orthogonal: unsupported dtype " + dt.String())
		}
	}
}

// orthogonal returns the row-major backing of a scaled orthogonal
// matrix of the given shape
func orthogonal(normal distuv.Normal, gain float64, shape ...int) []float64 {
	rows, cols := 1, 1
	switch len(shape) {
	case 0:
		return []float64{gain}
	case 1:
		cols = shape[0]
	default:
		rows = shape[0]
		for _, dim := range shape[1:] {
			cols *= dim
		}
	}

	a := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a.Set(i, j, normal.Rand())
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		panic("orthogonal: could not factorize random matrix")
	}

	// With a thin SVD, U is rows x min(rows, cols) and V is
	// cols x min(rows, cols); pick the factor matching the target shape
	var q mat.Dense
	if rows >= cols {
		svd.UTo(&q)
	} else {
		var v mat.Dense
		svd.VTo(&v)
		q.CloneFrom(v.T())
	}

	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, gain*q.At(i, j))
		}
	}
	return out
}
