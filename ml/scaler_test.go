package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitScalerStatistics(t *testing.T) {
	scaler, err := FitScaler([][]float64{
		{1, 2},
		{3, 2},
		{5, 2},
	})
	assert.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, scaler.Mean)
	assert.InDelta(t, math.Sqrt(8.0/3.0), scaler.Std[0], 1e-12)
	// constant column keeps a unit divisor
	assert.Equal(t, 1.0, scaler.Std[1])

	scaled := scaler.Transform([]float64{3, 2})
	assert.Equal(t, []float64{0, 0}, scaled)
}

func TestFitScalerSingleRow(t *testing.T) {
	scaler, err := FitScaler([][]float64{{4, 9}})
	assert.NoError(t, err)
	assert.Equal(t, []float64{4, 9}, scaler.Mean)
	// a one-row column has no spread; the divisor stays 1
	assert.Equal(t, []float64{1, 1}, scaler.Std)
}

func TestFitScalerEmptyMatrix(t *testing.T) {
	_, err := FitScaler(nil)
	assert.Error(t, err)
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{10}, Std: []float64{2}}
	row := []float64{14}
	scaled := scaler.Transform(row)
	assert.Equal(t, []float64{2}, scaled)
	assert.Equal(t, []float64{14}, row)
}
