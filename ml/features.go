package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/aavahealth/migraine-api/schema"
)

// Day weighting for the survey stream: today dominates, yesterday still
// counts. This replaces a temporal heuristic for self-reported triggers.
const (
	currentDayWeight  = 0.6
	previousDayWeight = 0.4
)

// SurveyModelFeatures returns the survey model's canonical feature order:
// the 15 day-weighted triggers followed by a per-user mean/std pair for
// each trigger.
func SurveyModelFeatures() []string {
	names := make([]string, 0, 3*len(schema.SurveyFeatures))
	names = append(names, schema.SurveyFeatures...)
	for _, f := range schema.SurveyFeatures {
		names = append(names, fmt.Sprintf("user_%s_mean", f), fmt.Sprintf("user_%s_std", f))
	}
	return names
}

// surveyAggregates computes each trigger's mean and sample standard
// deviation over a span of days. A span of one day has no spread, so its
// std is 0.
func surveyAggregates(days []schema.SurveyDay) (means, stds []float64) {
	means = make([]float64, len(schema.SurveyFeatures))
	stds = make([]float64, len(schema.SurveyFeatures))
	if len(days) == 0 {
		return means, stds
	}

	vectors := make([][]float64, len(days))
	for i, day := range days {
		vectors[i] = day.Vector()
	}

	column := make([]float64, len(days))
	for j := range schema.SurveyFeatures {
		for i := range vectors {
			column[i] = vectors[i][j]
		}
		means[j] = stat.Mean(column, nil)
		if len(days) > 1 {
			stds[j] = stat.StdDev(column, nil)
		}
	}
	return means, stds
}

// weightedTriggers blends today's responses with yesterday's.
func weightedTriggers(current, previous schema.SurveyDay) []float64 {
	cur := current.Vector()
	prev := previous.Vector()
	blended := make([]float64, len(cur))
	for j := range cur {
		blended[j] = currentDayWeight*cur[j] + previousDayWeight*prev[j]
	}
	return blended
}

func surveyRow(current, previous schema.SurveyDay, means, stds []float64) []float64 {
	row := weightedTriggers(current, previous)
	for j := range schema.SurveyFeatures {
		row = append(row, means[j], stds[j])
	}
	return row
}

// SurveyTrainingMatrix builds one training row per labeled day of a
// single user's oldest-first history. Each row blends that day with the
// day before it; the first day has no predecessor and stands alone. The
// per-user aggregates describe the user's whole response pattern, never
// the outcomes.
func SurveyTrainingMatrix(records []schema.SurveyRecord) (rows [][]float64, labels []float64) {
	if len(records) == 0 {
		return nil, nil
	}

	days := make([]schema.SurveyDay, len(records))
	for i, rec := range records {
		days[i] = rec.Day
	}
	means, stds := surveyAggregates(days)

	for i, rec := range records {
		previous := days[i]
		if i > 0 {
			previous = days[i-1]
		}
		rows = append(rows, surveyRow(days[i], previous, means, stds))
		labels = append(labels, boolLabel(*rec.HadMigraine))
	}
	return rows, labels
}

// SurveyInferenceFeatures builds the prediction-time vector from up to 7
// oldest-first days, the last being today. Aggregates cover the prior
// days only; a single-day history falls back to that day.
func SurveyInferenceFeatures(days []schema.SurveyDay) schema.FeatureVector {
	if len(days) == 0 {
		return nil
	}

	current := days[len(days)-1]
	previous := current
	if len(days) > 1 {
		previous = days[len(days)-2]
	}

	historical := days
	if len(days) > 1 {
		historical = days[:len(days)-1]
	}
	means, stds := surveyAggregates(historical)

	features := make(schema.FeatureVector, 3*len(schema.SurveyFeatures))
	blended := weightedTriggers(current, previous)
	for j, name := range schema.SurveyFeatures {
		features[name] = blended[j]
		features[fmt.Sprintf("user_%s_mean", name)] = means[j]
		features[fmt.Sprintf("user_%s_std", name)] = stds[j]
	}
	return features
}

func boolLabel(hadMigraine bool) float64 {
	if hadMigraine {
		return 1
	}
	return 0
}
