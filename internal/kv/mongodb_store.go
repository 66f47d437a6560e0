package kv

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBStore implements Store on a single MongoDB collection.
//
// Expiry is enforced two ways: a TTL index lets MongoDB reap stale
// documents in the background, and reads filter on expires_at so a
// document is never returned in the window between logical expiry and
// the reaper pass.
type MongoDBStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type kvDocument struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	Counter   int64      `bson:"counter"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoDBStore connects to MongoDB and prepares the kv collection.
func NewMongoDBStore(ctx context.Context, connectionString, database, collection string) (*MongoDBStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		// Disconnect errors during initialization cleanup are not
		// actionable; the connection failure is the error that matters.
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("create kv ttl index: %w", err)
	}

	return &MongoDBStore{client: client, collection: coll}, nil
}

// Get returns the live value for key, or ErrNotFound.
func (s *MongoDBStore) Get(ctx context.Context, key string) ([]byte, error) {
	filter := bson.M{
		"_id": key,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": time.Now()}},
		},
	}

	var doc kvDocument
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

// Set upserts value under key with an optional TTL.
func (s *MongoDBStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	update := bson.M{"$set": bson.M{"value": value}}
	if ttl > 0 {
		update["$set"].(bson.M)["expires_at"] = time.Now().Add(ttl)
	} else {
		update["$unset"] = bson.M{"expires_at": ""}
	}

	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	return err
}

// Incr atomically bumps the counter at key. The expiry is written only
// on document creation, so the window runs from the first increment.
func (s *MongoDBStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	filter := bson.M{
		"_id": key,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": time.Now()}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"counter": int64(1)},
	}
	if ttl > 0 {
		update["$setOnInsert"] = bson.M{"expires_at": time.Now().Add(ttl)}
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc kvDocument
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// The previous window just lapsed and its document has not been
		// reaped yet. Replace it and start a fresh window.
		replacement := kvDocument{Key: key, Counter: 1}
		if ttl > 0 {
			expiry := time.Now().Add(ttl)
			replacement.ExpiresAt = &expiry
		}
		_, replaceErr := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, replacement)
		if replaceErr != nil {
			return 0, replaceErr
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Counter, nil
}

// Close disconnects the MongoDB client.
func (s *MongoDBStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
