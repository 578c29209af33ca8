package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aavahealth/migraine-api/schema"
)

// SurveyLog is the append-only per-user log of daily survey responses.
type SurveyLog interface {
	AppendSurveyDay(userID string, day schema.SurveyDay, hadMigraine *bool) (schema.SurveyRecord, int64, error)
	ListSurveyRecords(userID string) ([]schema.SurveyRecord, error)
	CountLabeledSurveyRecords(userID string) (int64, error)
	ListRecentSurveyDays(userID string, days int) ([]schema.SurveyDay, error)
	SurveyTrainingCorpus() ([]schema.SurveyRecord, error)
}

// AppendSurveyDay appends one survey response for a user and returns the
// stored record together with the user's new labeled row count.
func (m *mongoDB) AppendSurveyDay(userID string, day schema.SurveyDay, hadMigraine *bool) (schema.SurveyRecord, int64, error) {
	if userID == "" {
		return schema.SurveyRecord{}, 0, fmt.Errorf("user_id should not be empty")
	}

	unlock := m.appendLocks.Lock(userID + "/" + string(schema.StreamSurvey))
	defer unlock()

	c := m.client.Database(m.database).Collection(schema.SurveyDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	seq, err := c.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return schema.SurveyRecord{}, 0, upstream("append survey day", err)
	}

	record := schema.SurveyRecord{
		LogID:       uuid.New().String(),
		UserID:      userID,
		Day:         day,
		HadMigraine: hadMigraine,
		Seq:         seq + 1,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := c.InsertOne(ctx, &record); err != nil {
		return schema.SurveyRecord{}, 0, upstream("append survey day", err)
	}

	total, err := c.CountDocuments(ctx, bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
	if err != nil {
		return schema.SurveyRecord{}, 0, upstream("append survey day", err)
	}

	return record, total, nil
}

// ListSurveyRecords returns the user's full labeled history, oldest first.
func (m *mongoDB) ListSurveyRecords(userID string) ([]schema.SurveyRecord, error) {
	return m.findSurveyRecords(bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
}

func (m *mongoDB) CountLabeledSurveyRecords(userID string) (int64, error) {
	c := m.client.Database(m.database).Collection(schema.SurveyDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	count, err := c.CountDocuments(ctx, bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
	if err != nil {
		return 0, upstream("count survey records", err)
	}
	return count, nil
}

// ListRecentSurveyDays returns the responses of the last `days` calendar days
// (at most 7), oldest first. Row count is capped at the same bound, newest
// rows winning, so repeated submissions never widen the window.
func (m *mongoDB) ListRecentSurveyDays(userID string, days int) ([]schema.SurveyDay, error) {
	if days > 7 {
		days = 7
	}

	c := m.client.Database(m.database).Collection(schema.SurveyDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	cursor, err := c.Find(ctx, bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": since},
	}, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "seq", Value: -1},
	}).SetLimit(int64(days)))
	if err != nil {
		return nil, upstream("list recent survey days", err)
	}

	records := make([]schema.SurveyRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, upstream("list recent survey days", err)
	}

	result := make([]schema.SurveyDay, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		result = append(result, records[i].Day)
	}
	return result, nil
}

// SurveyTrainingCorpus returns every labeled survey row across all users,
// oldest first. Used only for base-model training.
func (m *mongoDB) SurveyTrainingCorpus() ([]schema.SurveyRecord, error) {
	return m.findSurveyRecords(bson.M{"had_migraine": bson.M{"$exists": true}})
}

func (m *mongoDB) findSurveyRecords(query bson.M) ([]schema.SurveyRecord, error) {
	c := m.client.Database(m.database).Collection(schema.SurveyDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	cursor, err := c.Find(ctx, query, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "seq", Value: 1},
	}))
	if err != nil {
		return nil, upstream("find survey records", err)
	}

	records := make([]schema.SurveyRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, upstream("find survey records", err)
	}
	return records, nil
}
