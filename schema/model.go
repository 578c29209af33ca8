package schema

import "time"

const (
	ModelArtifactCollection = "modelArtifact"

	// BaseModelOwner keys the shared population model within the artifact
	// collection, alongside the per-user models.
	BaseModelOwner = "base"
)

// TrainingMetadata holds the diagnostics recorded at training time. For
// personalized models the accuracy is a training-set number: per-user data is
// too scarce for a held-out split and the figure must not be read as a
// generalization estimate.
type TrainingMetadata struct {
	SampleCount      int                `json:"sample_count" bson:"sample_count"`
	PositiveCount    int                `json:"positive_count" bson:"positive_count"`
	NegativeCount    int                `json:"negative_count" bson:"negative_count"`
	TrainingAccuracy float64            `json:"training_accuracy" bson:"training_accuracy"`
	Lambda           float64            `json:"lambda" bson:"lambda"`
	Importances      map[string]float64 `json:"importances" bson:"importances"`
	TrainedAt        time.Time          `json:"trained_at" bson:"trained_at"`
}

// ModelArtifact is the persisted form of one trained classifier together with
// its frozen scaler and the feature order both were fitted on. The three parts
// are written and loaded as a unit; applying a classifier with another
// scaler or another feature order silently corrupts predictions.
type ModelArtifact struct {
	Owner        string           `json:"owner" bson:"owner"`
	Stream       Stream           `json:"stream" bson:"stream"`
	FeatureNames []string         `json:"feature_names" bson:"feature_names"`
	Weights      []float64        `json:"weights" bson:"weights"`
	Intercept    float64          `json:"intercept" bson:"intercept"`
	ScalerMean   []float64        `json:"scaler_mean" bson:"scaler_mean"`
	ScalerStd    []float64        `json:"scaler_std" bson:"scaler_std"`
	Metadata     TrainingMetadata `json:"metadata" bson:"metadata"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

// IsBase reports whether the artifact is the shared population model.
func (a ModelArtifact) IsBase() bool { return a.Owner == BaseModelOwner }
