package mongodb

import (
	"context"
	"fmt"

	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordRepositoryMongoDB struct {
	collection *mongo.Collection
}

func NewRecordMongoDBRepository(client *mongo.Client, database, collection string) *RecordRepositoryMongoDB {
	return &RecordRepositoryMongoDB{
		collection: client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the indexes used to browse records by source and time.
func (r *RecordRepositoryMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source_path", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "level", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create record indexes: %w", err)
	}
	return nil
}

func (r *RecordRepositoryMongoDB) Save(ctx context.Context, records []entity.LogRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		docs = append(docs, record)
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert %d records: %w", len(records), err)
	}
	return nil
}
