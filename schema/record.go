package schema

import "time"

const (
	SensorDailyCollection = "sensorDaily"
	SurveyDailyCollection = "surveyDaily"
)

// SensorRecord is one appended row of the per-user sensor log. Rows are
// immutable once written: the log is append-only so the training corpus stays
// auditable. HadMigraine is nil for prediction-time observations and set for
// labeled training rows.
type SensorRecord struct {
	LogID       string    `json:"log_id" bson:"log_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Day         SensorDay `json:"day" bson:",inline"`
	HadMigraine *bool     `json:"had_migraine,omitempty" bson:"had_migraine,omitempty"`
	Seq         int64     `json:"seq" bson:"seq"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// SurveyRecord is one appended row of the per-user survey log.
type SurveyRecord struct {
	LogID       string    `json:"log_id" bson:"log_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Day         SurveyDay `json:"day" bson:",inline"`
	HadMigraine *bool     `json:"had_migraine,omitempty" bson:"had_migraine,omitempty"`
	Seq         int64     `json:"seq" bson:"seq"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (r SensorRecord) Labeled() bool { return r.HadMigraine != nil }
func (r SurveyRecord) Labeled() bool { return r.HadMigraine != nil }
