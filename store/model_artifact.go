package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aavahealth/migraine-api/schema"
)

// ModelArtifactStore persists trained (classifier, scaler, feature order)
// triples keyed by (owner, stream). A successful save fully replaces any
// prior model under the same key; models are never partially updated.
type ModelArtifactStore interface {
	SaveModelArtifact(artifact schema.ModelArtifact) error
	GetModelArtifact(owner string, stream schema.Stream) (*schema.ModelArtifact, error)
	HasModelArtifact(owner string, stream schema.Stream) (bool, error)
}

func (m *mongoDB) SaveModelArtifact(artifact schema.ModelArtifact) error {
	c := m.client.Database(m.database).Collection(schema.ModelArtifactCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	artifact.UpdatedAt = time.Now().UTC()

	query := bson.M{"owner": artifact.Owner, "stream": artifact.Stream}
	opts := options.Replace().SetUpsert(true)
	if _, err := c.ReplaceOne(ctx, query, &artifact, opts); err != nil {
		return upstream("save model artifact", err)
	}
	return nil
}

func (m *mongoDB) GetModelArtifact(owner string, stream schema.Stream) (*schema.ModelArtifact, error) {
	c := m.client.Database(m.database).Collection(schema.ModelArtifactCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	var artifact schema.ModelArtifact
	err := c.FindOne(ctx, bson.M{"owner": owner, "stream": stream}).Decode(&artifact)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoModelArtifact
	}
	if err != nil {
		return nil, upstream("get model artifact", err)
	}
	return &artifact, nil
}

func (m *mongoDB) HasModelArtifact(owner string, stream schema.Stream) (bool, error) {
	c := m.client.Database(m.database).Collection(schema.ModelArtifactCollection)
	ctx, cancel := contextWithTimeout()
	defer cancel()

	count, err := c.CountDocuments(ctx, bson.M{"owner": owner, "stream": stream})
	if err != nil {
		return false, upstream("check model artifact", err)
	}
	return count > 0, nil
}
