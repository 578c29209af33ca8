package store

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const defaultTimeout = 5 * time.Second

// ErrNoModelArtifact is returned when no trained model is persisted for the
// requested (owner, stream) key.
var ErrNoModelArtifact = errors.New("no model artifact")

// UpstreamError marks a failure to reach the record store itself, as opposed
// to a data-level condition. One stream failing this way must not abort the
// other, so callers branch on it with errors.As.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("record store unavailable during %s: %s", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// MigraineStore is the persistence surface of the prediction pipeline: the
// append-only per-user daily logs of both streams plus the trained model
// artifacts.
type MigraineStore interface {
	SensorLog
	SurveyLog
	ModelArtifactStore
	Ping() error
	Close() error
}

type mongoDB struct {
	client      *mongo.Client
	database    string
	appendLocks *keyedMutex
}

// NewMongoStore returns a MigraineStore backed by a connected mongo client.
func NewMongoStore(client *mongo.Client, database string) MigraineStore {
	return &mongoDB{
		client:      client,
		database:    database,
		appendLocks: newKeyedMutex(),
	}
}

func (m *mongoDB) Ping() error {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		return upstream("ping", err)
	}
	return nil
}

func (m *mongoDB) Close() error {
	ctx, cancel := contextWithTimeout()
	defer cancel()
	return m.client.Disconnect(ctx)
}
