package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	gradientIterations = 500
	learningRate       = 0.1
)

// Logistic is an L2-regularized logistic regression classifier. Training
// is full-batch gradient descent from a zero start with a fixed iteration
// count, so the same rows always produce the same weights.
type Logistic struct {
	Weights   []float64
	Intercept float64
}

// BalancedWeights mirrors the "balanced" class-weight heuristic: each
// class contributes n / (2 * count(class)) per row, so a rare positive
// class is not drowned out by negatives.
func BalancedWeights(labels []float64) (float64, float64) {
	var positives float64
	for _, y := range labels {
		if y > 0.5 {
			positives++
		}
	}
	n := float64(len(labels))
	negatives := n - positives
	if positives == 0 || negatives == 0 {
		return 1, 1
	}
	return n / (2 * negatives), n / (2 * positives)
}

// TrainLogistic fits the classifier on standardized rows. lambda is the
// L2 penalty on the weights; the intercept is unpenalized.
func TrainLogistic(rows [][]float64, labels []float64, lambda float64) (*Logistic, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return nil, errors.New("training matrix and labels do not align")
	}

	cols := len(rows[0])
	n := float64(len(rows))
	negWeight, posWeight := BalancedWeights(labels)

	model := &Logistic{Weights: make([]float64, cols)}
	grad := make([]float64, cols)

	for iter := 0; iter < gradientIterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradIntercept float64

		for i, row := range rows {
			p := model.Probability(row)
			residual := p - labels[i]
			if labels[i] > 0.5 {
				residual *= posWeight
			} else {
				residual *= negWeight
			}
			floats.AddScaled(grad, residual, row)
			gradIntercept += residual
		}

		for j := range model.Weights {
			grad[j] = grad[j]/n + lambda*model.Weights[j]
			model.Weights[j] -= learningRate * grad[j]
		}
		model.Intercept -= learningRate * gradIntercept / n
	}

	return model, nil
}

// Probability returns P(positive class) for one standardized row.
func (m *Logistic) Probability(row []float64) float64 {
	z := floats.Dot(m.Weights, row) + m.Intercept
	return 1 / (1 + math.Exp(-z))
}

// RegularizationStrength scales the L2 penalty inversely with the number
// of training rows: small personal datasets get pulled harder toward the
// origin, clamped to [0.1, 1.0].
func RegularizationStrength(samples int) float64 {
	lambda := 10 / float64(samples)
	if lambda < 0.1 {
		return 0.1
	}
	if lambda > 1.0 {
		return 1.0
	}
	return lambda
}
