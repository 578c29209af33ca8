package ml

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ConfusionMatrix counts holdout outcomes at the 0.5 decision threshold.
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// Accuracy is the fraction of rows whose thresholded probability matches
// the label, as a percentage.
func Accuracy(probabilities, labels []float64) float64 {
	if len(probabilities) == 0 {
		return 0
	}
	var correct float64
	for i, p := range probabilities {
		predicted := p >= 0.5
		actual := labels[i] > 0.5
		if predicted == actual {
			correct++
		}
	}
	return 100 * correct / float64(len(probabilities))
}

// Confusion tallies the confusion matrix at the 0.5 threshold.
func Confusion(probabilities, labels []float64) ConfusionMatrix {
	var cm ConfusionMatrix
	for i, p := range probabilities {
		predicted := p >= 0.5
		actual := labels[i] > 0.5
		switch {
		case predicted && actual:
			cm.TruePositive++
		case predicted && !actual:
			cm.FalsePositive++
		case !predicted && actual:
			cm.FalseNegative++
		default:
			cm.TrueNegative++
		}
	}
	return cm
}

// AUC computes the area under the ROC curve. Returns 0 when the labels
// contain a single class, where the curve is undefined.
func AUC(probabilities, labels []float64) float64 {
	scores := make([]float64, len(probabilities))
	copy(scores, probabilities)
	classes := make([]bool, len(labels))
	var positives int
	for i, y := range labels {
		classes[i] = y > 0.5
		if classes[i] {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return 0
	}

	sort.Sort(byScore{scores, classes})
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

type byScore struct {
	scores  []float64
	classes []bool
}

func (s byScore) Len() int           { return len(s.scores) }
func (s byScore) Less(i, j int) bool { return s.scores[i] < s.scores[j] }
func (s byScore) Swap(i, j int) {
	s.scores[i], s.scores[j] = s.scores[j], s.scores[i]
	s.classes[i], s.classes[j] = s.classes[j], s.classes[i]
}
