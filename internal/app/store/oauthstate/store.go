// internal/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store tracks one-time OAuth state tokens. Each token is consumed on
// first use; a TTL index on expires_at (see system/indexes) reaps
// whatever the flow abandons.
type Store struct {
	c *mongo.Collection
}

var ErrStateNotFound = errors.New("oauth state not found or expired")

// State is a pending OAuth round-trip.
type State struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	ReturnURL string             `bson:"return_url,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

// Put records a state token with the given lifetime.
func (s *Store) Put(ctx context.Context, token, returnURL string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.c.InsertOne(ctx, State{
		Token:     token,
		ReturnURL: returnURL,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return err
}

// Consume atomically looks up and deletes the state token. Expired or
// unknown tokens return ErrStateNotFound.
func (s *Store) Consume(ctx context.Context, token string) (State, error) {
	var st State
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&st)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return State{}, ErrStateNotFound
		}
		return State{}, err
	}
	return st, nil
}

// CleanupExpired removes expired states. Backup for delayed TTL reaping.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
