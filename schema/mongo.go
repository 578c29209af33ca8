package schema

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBIndexer struct {
	connURI  string
	database string
}

func NewMongoDBIndexer(connURI, database string) *MongoDBIndexer {
	return &MongoDBIndexer{
		connURI:  connURI,
		database: database,
	}
}

// IndexAll ensures the indexes every collection relies on. It is run once at
// process start; index creation is idempotent.
func (m *MongoDBIndexer) IndexAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.connURI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database(m.database)

	for _, collection := range []string{SensorDailyCollection, SurveyDailyCollection} {
		if err := m.indexDailyCollection(ctx, db, collection); err != nil {
			return err
		}
	}

	return m.indexModelArtifact(ctx, db)
}

func (m *MongoDBIndexer) indexDailyCollection(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "seq", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	if err != nil {
		log.WithError(err).WithField("collection", collection).Error("create daily record indexes")
	}
	return err
}

func (m *MongoDBIndexer) indexModelArtifact(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ModelArtifactCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner", Value: 1},
			{Key: "stream", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.WithError(err).Error("create model artifact index")
	}
	return err
}
