package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

// Repository stores refresh sessions. GetByRefresh returns nil, nil for an
// unknown or expired token.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByRefresh(ctx context.Context, refresh string) (*Session, error)
	DeleteByRefresh(ctx context.Context, refresh string) error
}

// MongoRepository keeps sessions in a collection. A TTL index on expiresAt
// lets MongoDB purge expired sessions on its own.
type MongoRepository struct {
	col *mongo.Collection
	ttl time.Duration
}

// NewMongoRepository ensures the collection's indexes. Sessions created
// without an expiry get ttl.
func NewMongoRepository(col *mongo.Collection, ttl time.Duration) *MongoRepository {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "refreshToken", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
	if _, err := col.Indexes().CreateMany(context.Background(), indexes); err != nil {
		logger.Warnf("sessions: create indexes: %v", err)
	}
	return &MongoRepository{col: col, ttl: orDefault(ttl)}
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	s.stamp(time.Now().UTC(), r.ttl)
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, bson.M{"refreshToken": refresh}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	// the TTL monitor runs about once a minute
	if s.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return &s, nil
}

func (r *MongoRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"refreshToken": refresh})
	return err
}
