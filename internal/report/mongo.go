package report

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Inserter is the slice of *mongo.Collection the sink needs.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoSink stores the report document with the run id as _id.
type MongoSink struct {
	collection Inserter
}

func NewMongoSink(collection Inserter) *MongoSink {
	return &MongoSink{collection: collection}
}

func (s *MongoSink) Name() string { return "mongo" }

func (s *MongoSink) Write(ctx context.Context, rep *Report) error {
	if _, err := s.collection.InsertOne(ctx, rep); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("run %s already stored: %w", rep.RunID, err)
		}
		return fmt.Errorf("mongo insert failed: %w", err)
	}
	return nil
}
