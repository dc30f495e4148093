// Package mirror records secondary bot tokens registered by users. The token
// unique index guarantees a token belongs to at most one user.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order_desk_bot/internal/domain"
	"order_desk_bot/internal/logging"
)

type mirrorCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Registry persists mirror registrations.
type Registry struct {
	mirrors mirrorCollection
	logger  *logrus.Entry
}

// NewRegistry constructs a Registry over the mirrors collection.
func NewRegistry(mirrors mirrorCollection, logger *logrus.Entry) *Registry {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registry{
		mirrors: mirrors,
		logger:  logger,
	}
}

// Register stores the token for the user. A token already held by anyone
// (including the same user) fails with ErrDuplicateToken.
func (r *Registry) Register(ctx context.Context, userID int64, token string) (domain.Mirror, error) {
	if r == nil || r.mirrors == nil {
		return domain.Mirror{}, errors.New("mirror registry is not initialized")
	}
	if ctx == nil {
		return domain.Mirror{}, errors.New("context is required")
	}
	if token == "" {
		return domain.Mirror{}, fmt.Errorf("empty token: %w", domain.ErrInvalidFormat)
	}

	mirror := domain.Mirror{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.mirrors.InsertOne(ctx, mirror); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Mirror{}, fmt.Errorf("register mirror: %w", domain.ErrDuplicateToken)
		}
		return domain.Mirror{}, fmt.Errorf("insert mirror: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":   "mirror_registered",
		"user_id": userID,
	}).Info("registered mirror bot")

	return mirror, nil
}

// ListByUser returns the user's registrations, oldest first.
func (r *Registry) ListByUser(ctx context.Context, userID int64) ([]domain.Mirror, error) {
	if r == nil || r.mirrors == nil {
		return nil, errors.New("mirror registry is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cursor, err := r.mirrors.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list mirrors: %w", err)
	}

	var mirrors []domain.Mirror
	if err := cursor.All(ctx, &mirrors); err != nil {
		return nil, fmt.Errorf("decode mirrors: %w", err)
	}

	return mirrors, nil
}
