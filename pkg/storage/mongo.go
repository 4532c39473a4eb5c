package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "mysterygraph"
	mongoCollection      = "mysteries"
	connectTimeout       = 10 * time.Second
)

// MongoStore keeps records in a MongoDB collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to uri and prepares the collection index.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

func (s *MongoStore) Save(ctx context.Context, r *Record) error {
	if err := prepare(r, s.now()); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: save %s: %w", r.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, notFound(id)
	}
	var r Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get %s: %w", id, err)
	}
	return &r, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}
	out := []Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(id)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo: delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
