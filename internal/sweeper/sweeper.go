// Package sweeper lapses expired timed bans. A minutely cron job flips
// banned_until records whose expiry passed back to unbanned, so a timed ban
// ends without waiting for the user's next contact.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order_desk_bot/internal/domain"
	"order_desk_bot/internal/logging"
)

const (
	sweepSchedule = "@every 1m"
	sweepTimeout  = 10 * time.Second
)

type userCollection interface {
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Sweeper owns the cron scheduler for the ban-expiry job.
type Sweeper struct {
	users  userCollection
	cron   *cron.Cron
	logger *logrus.Entry
}

// New constructs a Sweeper over the users collection.
func New(users userCollection, logger *logrus.Entry) *Sweeper {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Sweeper{
		users:  users,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the minutely sweep and starts the scheduler.
func (s *Sweeper) Start() error {
	if s == nil || s.users == nil {
		return errors.New("sweeper is not initialized")
	}

	_, err := s.cron.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		lapsed, err := s.SweepExpired(ctx)
		if err != nil {
			s.logger.WithField("event", "ban_sweep_failed").WithError(err).Error("ban sweep failed")
			return
		}
		if lapsed > 0 {
			s.logger.WithFields(logging.Fields{
				"event":  "bans_lapsed",
				"lapsed": lapsed,
			}).Info("lapsed expired bans")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule ban sweep: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logging.Fields{
		"event":    "sweeper_started",
		"schedule": sweepSchedule,
	}).Info("ban sweeper started")

	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs
// have finished.
func (s *Sweeper) Stop() context.Context {
	if s == nil || s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	return s.cron.Stop()
}

// SweepExpired unbans every timed ban whose expiry has passed and returns how
// many records were flipped. Permanent bans are never touched.
func (s *Sweeper) SweepExpired(ctx context.Context) (int64, error) {
	if s == nil || s.users == nil {
		return 0, errors.New("sweeper is not initialized")
	}
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	now := time.Now().UTC()
	result, err := s.users.UpdateMany(ctx,
		bson.M{
			"ban_status":     domain.BanUntil,
			"ban_expires_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{
			"ban_status":     domain.BanNone,
			"ban_reason":     "",
			"ban_expires_at": time.Time{},
			"updated_at":     now,
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("sweep expired bans: %w", err)
	}
	if result == nil {
		return 0, nil
	}

	return result.ModifiedCount, nil
}
