package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// weightScale multiplies standard normal draws for weight initialization.
const weightScale = 0.1

// Randn creates a rows x cols matrix with values drawn from N(0, scale^2).
//
// Values are drawn row-major from src, so the same source state always
// yields the same matrix.
//
// Parameters:
//   - rows, cols: Matrix dimensions
//   - scale: Standard deviation of the distribution
//   - src: Random source owned by the caller
func Randn(rows, cols int, scale float64, src rand.Source) *mat.Dense {
	dist := distuv.Normal{Mu: 0, Sigma: scale, Src: src}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}

// Zeros creates a rows x cols matrix filled with zeros.
//
// This is used for bias initialization.
func Zeros(rows, cols int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}

// NewSource returns a deterministic PCG source for seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
