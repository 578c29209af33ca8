package ml

import (
	"errors"
	"hash/fnv"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/aavahealth/migraine-api/schema"
)

// MinTrainingSamples is the labeled-day floor below which a personalized
// model is not fit.
const MinTrainingSamples = 10

const holdoutFolds = 5

// TrainingStore is the slice of the data store the trainer reads corpora
// from and writes artifacts to.
type TrainingStore interface {
	ListSensorRecords(userID string) ([]schema.SensorRecord, error)
	ListSurveyRecords(userID string) ([]schema.SurveyRecord, error)
	SensorTrainingCorpus() ([]schema.SensorRecord, error)
	SurveyTrainingCorpus() ([]schema.SurveyRecord, error)
	SaveModelArtifact(artifact schema.ModelArtifact) error
}

// BaseEvaluation reports how a population model performed on users it
// never trained on.
type BaseEvaluation struct {
	Stream           schema.Stream   `json:"stream"`
	TrainUsers       int             `json:"train_users"`
	HoldoutUsers     int             `json:"holdout_users"`
	TrainSamples     int             `json:"train_samples"`
	HoldoutSamples   int             `json:"holdout_samples"`
	Accuracy         float64         `json:"accuracy"`
	AUC              float64         `json:"auc"`
	Confusion        ConfusionMatrix `json:"confusion"`
	FoldAccuracies   []float64       `json:"fold_accuracies"`
	CrossValAccuracy float64         `json:"cross_val_accuracy"`
}

// Trainer fits and persists the per-user and base classifiers.
type Trainer struct {
	store TrainingStore
	cache *ModelCache
}

func NewTrainer(store TrainingStore, cache *ModelCache) *Trainer {
	return &Trainer{
		store: store,
		cache: cache,
	}
}

// userRows is one user's design-matrix slice, kept together so holdout
// splits never separate a user's days.
type userRows struct {
	userID string
	rows   [][]float64
	labels []float64
}

func (t *Trainer) loadUserRows(userID string, stream schema.Stream) (userRows, []string, error) {
	switch stream {
	case schema.StreamSensor:
		records, err := t.store.ListSensorRecords(userID)
		if err != nil {
			return userRows{}, nil, err
		}
		u := userRows{userID: userID}
		for _, rec := range records {
			u.rows = append(u.rows, clippedSensorVector(rec.Day))
			u.labels = append(u.labels, boolLabel(*rec.HadMigraine))
		}
		return u, schema.SensorFeatures, nil

	case schema.StreamSurvey:
		records, err := t.store.ListSurveyRecords(userID)
		if err != nil {
			return userRows{}, nil, err
		}
		rows, labels := SurveyTrainingMatrix(records)
		return userRows{userID: userID, rows: rows, labels: labels}, SurveyModelFeatures(), nil

	default:
		return userRows{}, nil, errors.New("unknown stream: " + string(stream))
	}
}

// TrainUserModel fits a personalized classifier from one user's labeled
// history and persists it, replacing any prior personalized model for the
// stream. The recorded accuracy is resubstitution, not generalization.
func (t *Trainer) TrainUserModel(userID string, stream schema.Stream) (schema.ModelArtifact, error) {
	u, featureNames, err := t.loadUserRows(userID, stream)
	if err != nil {
		return schema.ModelArtifact{}, err
	}

	if len(u.rows) < MinTrainingSamples {
		return schema.ModelArtifact{}, &InsufficientDataError{
			Stream:   stream,
			Count:    len(u.rows),
			Required: MinTrainingSamples,
		}
	}
	positives, negatives := classCounts(u.labels)
	if positives == 0 || negatives == 0 {
		return schema.ModelArtifact{}, ErrSingleClass
	}

	artifact, err := t.fitArtifact(userID, stream, featureNames, u.rows, u.labels)
	if err != nil {
		return schema.ModelArtifact{}, err
	}

	if err := t.store.SaveModelArtifact(artifact); err != nil {
		return schema.ModelArtifact{}, err
	}
	t.cache.Put(artifact)

	log.WithFields(log.Fields{
		"prefix":   "ml",
		"user_id":  userID,
		"stream":   stream,
		"samples":  artifact.Metadata.SampleCount,
		"accuracy": artifact.Metadata.TrainingAccuracy,
	}).Info("trained personalized model")

	return artifact, nil
}

// TrainBaseModel fits the shared population classifier over the full
// labeled corpus and evaluates it on users held out of training.
func (t *Trainer) TrainBaseModel(stream schema.Stream) (schema.ModelArtifact, BaseEvaluation, error) {
	users, featureNames, err := t.loadCorpus(stream)
	if err != nil {
		return schema.ModelArtifact{}, BaseEvaluation{}, err
	}

	evaluation := BaseEvaluation{Stream: stream}

	var trainUsers, holdoutUsers []userRows
	for _, u := range users {
		if userFold(u.userID) == 0 {
			holdoutUsers = append(holdoutUsers, u)
		} else {
			trainUsers = append(trainUsers, u)
		}
	}
	// A corpus too small to spare a holdout still trains; the evaluation
	// fields just stay empty.
	if len(trainUsers) == 0 {
		trainUsers, holdoutUsers = users, nil
	}

	trainRows, trainLabels := flatten(trainUsers)
	if len(trainRows) < MinTrainingSamples {
		return schema.ModelArtifact{}, evaluation, &InsufficientDataError{
			Stream:   stream,
			Count:    len(trainRows),
			Required: MinTrainingSamples,
		}
	}
	positives, negatives := classCounts(trainLabels)
	if positives == 0 || negatives == 0 {
		return schema.ModelArtifact{}, evaluation, ErrSingleClass
	}

	artifact, err := t.fitArtifact(schema.BaseModelOwner, stream, featureNames, trainRows, trainLabels)
	if err != nil {
		return schema.ModelArtifact{}, evaluation, err
	}

	evaluation.TrainUsers = len(trainUsers)
	evaluation.HoldoutUsers = len(holdoutUsers)
	evaluation.TrainSamples = len(trainRows)

	if len(holdoutUsers) > 0 {
		holdoutRows, holdoutLabels := flatten(holdoutUsers)
		probabilities := scoreRows(artifact, holdoutRows)
		evaluation.HoldoutSamples = len(holdoutRows)
		evaluation.Accuracy = Accuracy(probabilities, holdoutLabels)
		evaluation.AUC = AUC(probabilities, holdoutLabels)
		evaluation.Confusion = Confusion(probabilities, holdoutLabels)
	}
	evaluation.FoldAccuracies, evaluation.CrossValAccuracy = t.crossValidate(users, featureNames, stream)

	if err := t.store.SaveModelArtifact(artifact); err != nil {
		return schema.ModelArtifact{}, evaluation, err
	}
	t.cache.Put(artifact)

	log.WithFields(log.Fields{
		"prefix":           "ml",
		"stream":           stream,
		"train_users":      evaluation.TrainUsers,
		"holdout_users":    evaluation.HoldoutUsers,
		"holdout_accuracy": evaluation.Accuracy,
		"auc":              evaluation.AUC,
	}).Info("trained base model")

	return artifact, evaluation, nil
}

func (t *Trainer) loadCorpus(stream schema.Stream) ([]userRows, []string, error) {
	grouped := map[string]*userRows{}
	var order []string

	add := func(userID string, row []float64, label float64) {
		u, ok := grouped[userID]
		if !ok {
			u = &userRows{userID: userID}
			grouped[userID] = u
			order = append(order, userID)
		}
		u.rows = append(u.rows, row)
		u.labels = append(u.labels, label)
	}

	var featureNames []string
	switch stream {
	case schema.StreamSensor:
		records, err := t.store.SensorTrainingCorpus()
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range records {
			add(rec.UserID, clippedSensorVector(rec.Day), boolLabel(*rec.HadMigraine))
		}
		featureNames = schema.SensorFeatures

	case schema.StreamSurvey:
		records, err := t.store.SurveyTrainingCorpus()
		if err != nil {
			return nil, nil, err
		}
		byUser := map[string][]schema.SurveyRecord{}
		var userOrder []string
		for _, rec := range records {
			if _, ok := byUser[rec.UserID]; !ok {
				userOrder = append(userOrder, rec.UserID)
			}
			byUser[rec.UserID] = append(byUser[rec.UserID], rec)
		}
		for _, userID := range userOrder {
			rows, labels := SurveyTrainingMatrix(byUser[userID])
			for i := range rows {
				add(userID, rows[i], labels[i])
			}
		}
		featureNames = SurveyModelFeatures()

	default:
		return nil, nil, errors.New("unknown stream: " + string(stream))
	}

	sort.Strings(order)
	users := make([]userRows, 0, len(order))
	for _, userID := range order {
		users = append(users, *grouped[userID])
	}
	return users, featureNames, nil
}

func (t *Trainer) fitArtifact(owner string, stream schema.Stream, featureNames []string, rows [][]float64, labels []float64) (schema.ModelArtifact, error) {
	scaler, err := FitScaler(rows)
	if err != nil {
		return schema.ModelArtifact{}, err
	}
	scaled := scaler.TransformAll(rows)

	lambda := RegularizationStrength(len(rows))
	model, err := TrainLogistic(scaled, labels, lambda)
	if err != nil {
		return schema.ModelArtifact{}, err
	}

	probabilities := make([]float64, len(scaled))
	for i, row := range scaled {
		probabilities[i] = model.Probability(row)
	}
	positives, negatives := classCounts(labels)

	return schema.ModelArtifact{
		Owner:        owner,
		Stream:       stream,
		FeatureNames: featureNames,
		Weights:      model.Weights,
		Intercept:    model.Intercept,
		ScalerMean:   scaler.Mean,
		ScalerStd:    scaler.Std,
		Metadata: schema.TrainingMetadata{
			SampleCount:      len(rows),
			PositiveCount:    positives,
			NegativeCount:    negatives,
			TrainingAccuracy: Accuracy(probabilities, labels),
			Lambda:           lambda,
			Importances:      importances(featureNames, model.Weights),
			TrainedAt:        time.Now().UTC(),
		},
	}, nil
}

// crossValidate measures out-of-fold accuracy with users bucketed into
// folds by id hash, so every fold predicts users absent from its
// training half.
func (t *Trainer) crossValidate(users []userRows, featureNames []string, stream schema.Stream) ([]float64, float64) {
	var foldAccuracies []float64
	for fold := 0; fold < holdoutFolds; fold++ {
		var trainUsers, testUsers []userRows
		for _, u := range users {
			if userFold(u.userID) == fold {
				testUsers = append(testUsers, u)
			} else {
				trainUsers = append(trainUsers, u)
			}
		}
		if len(trainUsers) == 0 || len(testUsers) == 0 {
			continue
		}

		trainRows, trainLabels := flatten(trainUsers)
		positives, negatives := classCounts(trainLabels)
		if len(trainRows) < MinTrainingSamples || positives == 0 || negatives == 0 {
			continue
		}

		artifact, err := t.fitArtifact(schema.BaseModelOwner, stream, featureNames, trainRows, trainLabels)
		if err != nil {
			continue
		}
		testRows, testLabels := flatten(testUsers)
		foldAccuracies = append(foldAccuracies, Accuracy(scoreRows(artifact, testRows), testLabels))
	}

	if len(foldAccuracies) == 0 {
		return nil, 0
	}
	var sum float64
	for _, a := range foldAccuracies {
		sum += a
	}
	return foldAccuracies, sum / float64(len(foldAccuracies))
}

// clippedSensorVector clamps stored values into the contract ranges before
// they enter a design matrix. Historical rows are cleaned, not rejected;
// strict validation only applies at submission and prediction time.
func clippedSensorVector(day schema.SensorDay) []float64 {
	return schema.SensorDayFromFeatures(schema.ClipToRange(day.Features(), schema.StreamSensor)).Vector()
}

func scoreRows(artifact schema.ModelArtifact, rows [][]float64) []float64 {
	scaler := &StandardScaler{Mean: artifact.ScalerMean, Std: artifact.ScalerStd}
	model := &Logistic{Weights: artifact.Weights, Intercept: artifact.Intercept}
	probabilities := make([]float64, len(rows))
	for i, row := range rows {
		probabilities[i] = model.Probability(scaler.Transform(row))
	}
	return probabilities
}

func flatten(users []userRows) (rows [][]float64, labels []float64) {
	for _, u := range users {
		rows = append(rows, u.rows...)
		labels = append(labels, u.labels...)
	}
	return rows, labels
}

func classCounts(labels []float64) (positives, negatives int) {
	for _, y := range labels {
		if y > 0.5 {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}

func userFold(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % holdoutFolds)
}

// importances normalizes absolute weights to sum to 1 so they read like
// shares of the model's attention.
func importances(featureNames []string, weights []float64) map[string]float64 {
	var total float64
	for _, w := range weights {
		if w < 0 {
			total -= w
		} else {
			total += w
		}
	}

	result := make(map[string]float64, len(featureNames))
	for i, name := range featureNames {
		w := weights[i]
		if w < 0 {
			w = -w
		}
		if total > 0 {
			result[name] = w / total
		} else {
			result[name] = 0
		}
	}
	return result
}
