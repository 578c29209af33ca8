package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each feature column on its training mean and
// divides by its training standard deviation. A constant column keeps a
// divisor of 1 so transformed values stay finite.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column statistics over the training matrix.
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, errors.New("fit scaler on empty matrix")
	}

	cols := len(rows[0])
	scaler := &StandardScaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	column := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		scaler.Mean[j] = stat.Mean(column, nil)
		scaler.Std[j] = populationStdDev(column)
		if scaler.Std[j] == 0 {
			scaler.Std[j] = 1
		}
	}

	return scaler, nil
}

// populationStdDev divides by n rather than n-1. A single-row column
// reports zero spread.
func populationStdDev(column []float64) float64 {
	n := float64(len(column))
	if n < 2 {
		return 0
	}
	variance := stat.Variance(column, nil) * (n - 1) / n
	return math.Sqrt(variance)
}

// Transform returns the standardized copy of a single row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	scaled := make([]float64, len(row))
	for j, v := range row {
		scaled[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return scaled
}

// TransformAll standardizes every row of a matrix.
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		scaled[i] = s.Transform(row)
	}
	return scaled
}
