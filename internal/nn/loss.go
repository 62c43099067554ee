package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// probEpsilon clamps probabilities away from 0 and 1 inside log terms.
const probEpsilon = 1e-12

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// This is the loss reported during training and used to judge progress.
func MSELoss(predictions, targets mat.Matrix) (float64, error) {
	if err := sameShape(predictions, targets); err != nil {
		return 0, fmt.Errorf("MSELoss: %w", err)
	}

	var diff mat.Dense
	diff.Sub(predictions, targets)
	diff.MulElem(&diff, &diff)

	r, c := diff.Dims()
	return mat.Sum(&diff) / float64(r*c), nil
}

// BinaryCrossEntropy computes the mean binary cross-entropy loss.
//
// Loss = -mean(y*log(p) + (1-y)*log(1-p)), summed over output columns.
//
// Its gradient with respect to the output pre-activation is exactly
// (p - y) / m, the output delta used by MLP.Backward.
func BinaryCrossEntropy(predictions, targets mat.Matrix) (float64, error) {
	if err := sameShape(predictions, targets); err != nil {
		return 0, fmt.Errorf("BinaryCrossEntropy: %w", err)
	}

	r, c := predictions.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			p := math.Min(math.Max(predictions.At(i, j), probEpsilon), 1-probEpsilon)
			y := targets.At(i, j)
			sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
		}
	}
	return sum / float64(r), nil
}

// Accuracy returns the fraction of predictions on the correct side of 0.5.
func Accuracy(predictions, targets mat.Matrix) (float64, error) {
	if err := sameShape(predictions, targets); err != nil {
		return 0, fmt.Errorf("Accuracy: %w", err)
	}

	r, c := predictions.Dims()
	correct := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			predicted := predictions.At(i, j) > 0.5
			actual := targets.At(i, j) > 0.5
			if predicted == actual {
				correct++
			}
		}
	}
	return float64(correct) / float64(r*c), nil
}

func sameShape(a, b mat.Matrix) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, ar, ac, br, bc)
	}
	return nil
}
