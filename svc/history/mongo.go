package history

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "letter_history"

// MongoStore keeps the log in a mongo collection.
type MongoStore struct {
	coll *mongo.Collection
	opts options
}

func NewMongoStore(database *mongo.Database, opts ...Option) *MongoStore {
	return &MongoStore{coll: database.Collection(CollectionName), opts: newOptions(opts)}
}

// EnsureIndexes creates the owner and owner+intern listing indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "intern_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("history: ensure indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Append(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, s.opts)
	if err != nil {
		return Record{}, err
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("history: append: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) ListAll(ctx context.Context, ownerID string) ([]Record, error) {
	return s.find(ctx, bson.D{{Key: "owner_id", Value: ownerID}})
}

func (s *MongoStore) ListByIntern(ctx context.Context, ownerID, internID string) ([]Record, error) {
	return s.find(ctx, bson.D{{Key: "owner_id", Value: ownerID}, {Key: "intern_id", Value: internID}})
}

func (s *MongoStore) find(ctx context.Context, filter bson.D) ([]Record, error) {
	cur, err := s.coll.Find(ctx, filter,
		mongooptions.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	out := make([]Record, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
