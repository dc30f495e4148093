// Package ledger owns user balances, aliases, and ban state. Every balance
// mutation is a single conditional Mongo update, so concurrent admin and
// user-driven operations on the same identity never lose updates.
package ledger

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

type userCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Ledger is the balance store. Multi-step flows (first contact, nullify) hold
// a per-identity lock; single-document updates rely on Mongo atomicity alone.
type Ledger struct {
	users   userCollection
	aliases *AliasGenerator
	locks   *identityLocks
	logger  *logrus.Entry
}

// New constructs a Ledger over the users collection.
func New(users userCollection, aliases *AliasGenerator, logger *logrus.Entry) *Ledger {
	if logger == nil {
		logger = logging.Logger()
	}
	if aliases == nil {
		aliases = NewAliasGenerator(time.Now().UnixNano())
	}

	return &Ledger{
		users:   users,
		aliases: aliases,
		locks:   newIdentityLocks(),
		logger:  logger,
	}
}

// GetOrCreate returns the user for the given identity, creating it on first
// contact with balance 0, a fresh unique alias, and unbanned state. Display
// fields are refreshed on every call.
func (l *Ledger) GetOrCreate(ctx context.Context, userID int64, username, firstName string) (domain.User, error) {
	if l == nil || l.users == nil {
		return domain.User{}, errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return domain.User{}, errors.New("context is required")
	}
	if userID == 0 {
		return domain.User{}, errors.New("user id is required")
	}

	unlock := l.locks.lock(userID)
	defer unlock()

	user, err := l.byID(ctx, userID)
	if err == nil {
		return l.refreshDisplay(ctx, user, username, firstName)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	return l.create(ctx, userID, username, firstName)
}

func (l *Ledger) create(ctx context.Context, userID int64, username, firstName string) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	for {
		alias, err := GenerateAlias(ctx, l.aliases, l.aliasExists)
		if err != nil {
			return domain.User{}, err
		}

		user := domain.User{
			UserID:    userID,
			Username:  username,
			FirstName: firstName,
			Alias:     alias,
			Balance:   0,
			BanStatus: domain.BanNone,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = l.users.InsertOne(ctx, user)
		if err == nil {
			l.logger.WithFields(logging.Fields{
				"event":   "user_registered",
				"user_id": userID,
				"alias":   alias,
			}).Info("registered new user")
			return user, nil
		}

		if mongo.IsDuplicateKeyError(err) {
			// Either the alias lost a race or the identity was inserted
			// concurrently; re-read settles which.
			if existing, lookupErr := l.byID(ctx, userID); lookupErr == nil {
				return existing, nil
			}
			continue
		}

		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
}

func (l *Ledger) refreshDisplay(ctx context.Context, user domain.User, username, firstName string) (domain.User, error) {
	if user.Username == username && user.FirstName == firstName {
		return user, nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := l.users.UpdateOne(ctx,
		bson.M{"user_id": user.UserID},
		bson.M{"$set": bson.M{
			"username":   username,
			"first_name": firstName,
			"updated_at": now,
		}},
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("refresh user display: %w", err)
	}

	user.Username = username
	user.FirstName = firstName
	user.UpdatedAt = now
	return user, nil
}

// Credit adds a positive amount to the user's balance.
func (l *Ledger) Credit(ctx context.Context, userID int64, amount int64) error {
	if err := l.checkMutate(ctx, amount); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := l.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}
	if result == nil || result.MatchedCount == 0 {
		return fmt.Errorf("credit user %d: %w", userID, domain.ErrNotFound)
	}

	l.logger.WithFields(logging.Fields{
		"event":   "balance_credited",
		"user_id": userID,
		"amount":  amount,
	}).Info("credited balance")

	return nil
}

// Debit subtracts a positive amount from the user's balance. The update filter
// requires a sufficient balance, so a debit that would go negative matches
// nothing and leaves the record untouched.
func (l *Ledger) Debit(ctx context.Context, userID int64, amount int64) error {
	if err := l.checkMutate(ctx, amount); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := l.users.UpdateOne(ctx,
		bson.M{
			"user_id": userID,
			"balance": bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{"balance": -amount},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("debit user: %w", err)
	}

	if result == nil || result.MatchedCount == 0 {
		if _, lookupErr := l.byID(ctx, userID); lookupErr != nil {
			return lookupErr
		}
		return fmt.Errorf("debit user %d by %d: %w", userID, amount, domain.ErrInsufficientFunds)
	}

	l.logger.WithFields(logging.Fields{
		"event":   "balance_debited",
		"user_id": userID,
		"amount":  amount,
	}).Info("debited balance")

	return nil
}

// SetBalance overrides the balance with an absolute non-negative value.
func (l *Ledger) SetBalance(ctx context.Context, userID int64, amount int64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if amount < 0 {
		return fmt.Errorf("balance %d: %w", amount, domain.ErrInvalidFormat)
	}

	result, err := l.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"balance":    amount,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	if result == nil || result.MatchedCount == 0 {
		return fmt.Errorf("set balance for user %d: %w", userID, domain.ErrNotFound)
	}

	l.logger.WithFields(logging.Fields{
		"event":   "balance_set",
		"user_id": userID,
		"amount":  amount,
	}).Info("set balance")

	return nil
}

// Ban blocks the user behind the alias. days must be -1 (forever) or within
// 1..1200; anything else is rejected before any lookup or mutation.
func (l *Ledger) Ban(ctx context.Context, alias, reason string, days int) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if days != domain.DurationForever && (days < domain.MinBanDays || days > domain.MaxBanDays) {
		return fmt.Errorf("ban duration %d days: %w", days, domain.ErrInvalidDuration)
	}

	now := time.Now().UTC()
	set := bson.M{
		"ban_reason": reason,
		"updated_at": now,
	}

	if days == domain.DurationForever {
		set["ban_status"] = domain.BanForever
		set["ban_expires_at"] = time.Time{}
	} else {
		set["ban_status"] = domain.BanUntil
		set["ban_expires_at"] = now.AddDate(0, 0, days)
	}

	result, err := l.users.UpdateOne(ctx, bson.M{"alias": alias}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	if result == nil || result.MatchedCount == 0 {
		return fmt.Errorf("ban alias %s: %w", alias, domain.ErrNotFound)
	}

	l.logger.WithFields(logging.Fields{
		"event":  "user_banned",
		"alias":  alias,
		"days":   days,
		"reason": reason,
	}).Info("banned user")

	return nil
}

// Nullify rotates the alias to a fresh unique value and zeroes the balance.
// Returns the affected identity so the caller can notify the user.
func (l *Ledger) Nullify(ctx context.Context, alias string) (int64, error) {
	if l == nil || l.users == nil {
		return 0, errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	user, err := l.ByAlias(ctx, alias)
	if err != nil {
		return 0, err
	}

	unlock := l.locks.lock(user.UserID)
	defer unlock()

	for {
		fresh, err := GenerateAlias(ctx, l.aliases, l.aliasExists)
		if err != nil {
			return 0, err
		}

		result, err := l.users.UpdateOne(ctx,
			// The old alias in the filter guards against a concurrent
			// rotation of the same record.
			bson.M{"user_id": user.UserID, "alias": alias},
			bson.M{"$set": bson.M{
				"alias":      fresh,
				"balance":    int64(0),
				"updated_at": time.Now().UTC(),
			}},
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return 0, fmt.Errorf("nullify user: %w", err)
		}
		if result == nil || result.MatchedCount == 0 {
			return 0, fmt.Errorf("nullify alias %s: %w", alias, domain.ErrNotFound)
		}

		l.logger.WithFields(logging.Fields{
			"event":     "user_nullified",
			"user_id":   user.UserID,
			"old_alias": alias,
			"new_alias": fresh,
		}).Info("nullified user")

		return user.UserID, nil
	}
}

// ByID fetches a user by Telegram identity.
func (l *Ledger) ByID(ctx context.Context, userID int64) (domain.User, error) {
	if l == nil || l.users == nil {
		return domain.User{}, errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return domain.User{}, errors.New("context is required")
	}

	return l.byID(ctx, userID)
}

// ByAlias fetches a user through the alias unique index.
func (l *Ledger) ByAlias(ctx context.Context, alias string) (domain.User, error) {
	if l == nil || l.users == nil {
		return domain.User{}, errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return domain.User{}, errors.New("context is required")
	}

	return l.decodeOne(l.users.FindOne(ctx, bson.M{"alias": alias}), fmt.Sprintf("alias %s", alias))
}

// List returns all users, newest first.
func (l *Ledger) List(ctx context.Context) ([]domain.User, error) {
	if l == nil || l.users == nil {
		return nil, errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cursor, err := l.users.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	return users, nil
}

func (l *Ledger) byID(ctx context.Context, userID int64) (domain.User, error) {
	return l.decodeOne(l.users.FindOne(ctx, bson.M{"user_id": userID}), fmt.Sprintf("user %d", userID))
}

func (l *Ledger) decodeOne(result *mongo.SingleResult, subject string) (domain.User, error) {
	if result == nil {
		return domain.User{}, errors.New("find user returned no result")
	}
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, fmt.Errorf("%s: %w", subject, domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("find %s: %w", subject, err)
	}

	var user domain.User
	if err := result.Decode(&user); err != nil {
		return domain.User{}, fmt.Errorf("decode %s: %w", subject, err)
	}

	return user, nil
}

func (l *Ledger) aliasExists(ctx context.Context, alias string) (bool, error) {
	count, err := l.users.CountDocuments(ctx, bson.M{"alias": alias})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (l *Ledger) checkMutate(ctx context.Context, amount int64) error {
	if l == nil || l.users == nil {
		return errors.New("ledger is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if amount <= 0 {
		return fmt.Errorf("amount %d must be positive: %w", amount, domain.ErrInvalidFormat)
	}

	return nil
}
