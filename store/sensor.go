package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aavahealth/migraine-api/schema"
)

// SensorLog is the append-only per-user log of daily sensor readings.
type SensorLog interface {
	AppendSensorDay(userID string, day schema.SensorDay, hadMigraine *bool) (schema.SensorRecord, int64, error)
	ListSensorRecords(userID string) ([]schema.SensorRecord, error)
	CountLabeledSensorRecords(userID string) (int64, error)
	ListRecentSensorDays(userID string, days int) ([]schema.SensorDay, error)
	SensorTrainingCorpus() ([]schema.SensorRecord, error)
}

// AppendSensorDay appends one day of readings for a user and returns the
// stored record together with the user's new labeled row count. Appends for
// the same user are serialized; prior rows are never overwritten.
func (m *mongoDB) AppendSensorDay(userID string, day schema.SensorDay, hadMigraine *bool) (schema.SensorRecord, int64, error) {
	if userID == "" {
		return schema.SensorRecord{}, 0, fmt.Errorf("user_id should not be empty")
	}

	unlock := m.appendLocks.Lock(userID + "/" + string(schema.StreamSensor))
	defer unlock()

	c := m.client.Database(m.database).Collection(schema.SensorDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	seq, err := c.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return schema.SensorRecord{}, 0, upstream("append sensor day", err)
	}

	record := schema.SensorRecord{
		LogID:       uuid.New().String(),
		UserID:      userID,
		Day:         day,
		HadMigraine: hadMigraine,
		Seq:         seq + 1,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := c.InsertOne(ctx, &record); err != nil {
		return schema.SensorRecord{}, 0, upstream("append sensor day", err)
	}

	total, err := c.CountDocuments(ctx, bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
	if err != nil {
		return schema.SensorRecord{}, 0, upstream("append sensor day", err)
	}

	return record, total, nil
}

// ListSensorRecords returns the user's full labeled history, oldest first.
func (m *mongoDB) ListSensorRecords(userID string) ([]schema.SensorRecord, error) {
	return m.findSensorRecords(bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
}

func (m *mongoDB) CountLabeledSensorRecords(userID string) (int64, error) {
	c := m.client.Database(m.database).Collection(schema.SensorDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	count, err := c.CountDocuments(ctx, bson.M{"user_id": userID, "had_migraine": bson.M{"$exists": true}})
	if err != nil {
		return 0, upstream("count sensor records", err)
	}
	return count, nil
}

// ListRecentSensorDays returns the readings of the last `days` calendar days
// (at most 7), labeled or not, oldest first. The row count is capped at the
// same bound, newest rows winning, so a double-submitted day cannot grow the
// window past what the scoring path accepts.
func (m *mongoDB) ListRecentSensorDays(userID string, days int) ([]schema.SensorDay, error) {
	if days > 7 {
		days = 7
	}

	c := m.client.Database(m.database).Collection(schema.SensorDailyCollection)
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
		return nil, upstream("list recent sensor days", err)
	}

	records := make([]schema.SensorRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, upstream("list recent sensor days", err)
	}

	result := make([]schema.SensorDay, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		result = append(result, records[i].Day)
	}
	return result, nil
}

// SensorTrainingCorpus returns every labeled sensor row across all users,
// oldest first. Used only for base-model training.
func (m *mongoDB) SensorTrainingCorpus() ([]schema.SensorRecord, error) {
	return m.findSensorRecords(bson.M{"had_migraine": bson.M{"$exists": true}})
}

func (m *mongoDB) findSensorRecords(query bson.M) ([]schema.SensorRecord, error) {
	c := m.client.Database(m.database).Collection(schema.SensorDailyCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	cursor, err := c.Find(ctx, query, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "seq", Value: 1},
	}))
	if err != nil {
		return nil, upstream("find sensor records", err)
	}

	records := make([]schema.SensorRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, upstream("find sensor records", err)
	}
	return records, nil
}
