package intern

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the mongo collection holding intern records.
const CollectionName = "interns"

// MongoStore keeps records in a mongo collection.
type MongoStore struct {
	coll *mongo.Collection
	opts options
}

// NewMongoStore returns a store backed by the interns collection of database.
func NewMongoStore(database *mongo.Database, opts ...Option) *MongoStore {
	return &MongoStore{coll: database.Collection(CollectionName), opts: newOptions(opts)}
}

// EnsureIndexes creates the owner listing index and the per-owner unique
// email index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "email", Value: 1}},
			Options: mongooptions.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$gt", Value: ""}}}}),
		},
	})
	if err != nil {
		return fmt.Errorf("intern: ensure indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, ownerID string) ([]Record, error) {
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: "owner_id", Value: ownerID}},
		mongooptions.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("intern: list: %w", err)
	}
	out := make([]Record, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("intern: list: %w", err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, ownerID, id string) (Record, error) {
	var r Record
	err := s.coll.FindOne(ctx, ownerFilter(ownerID, id)).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: get: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (s *MongoStore) Lookup(ctx context.Context, id string) (Record, error) {
	var r Record
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: lookup: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (s *MongoStore) Create(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepareCreate(rec, s.opts)
	if err != nil {
		return Record{}, err
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Record{}, errors.Join(ErrConflict, err)
		}
		return Record{}, fmt.Errorf("intern: create: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) Update(ctx context.Context, rec Record) (Record, error) {
	existing, err := s.Get(ctx, rec.OwnerID, rec.ID)
	if err != nil {
		return Record{}, err
	}
	rec, err = prepareUpdate(rec, existing, s.opts)
	if err != nil {
		return Record{}, err
	}

	res, err := s.coll.ReplaceOne(ctx, ownerFilter(rec.OwnerID, rec.ID), rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Record{}, errors.Join(ErrConflict, err)
		}
		return Record{}, fmt.Errorf("intern: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.coll.DeleteOne(ctx, ownerFilter(ownerID, id))
	if err != nil {
		return fmt.Errorf("intern: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func ownerFilter(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}
}
