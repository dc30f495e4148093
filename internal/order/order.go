// Package order owns the order lifecycle: pending orders move to in_progress
// on operator confirm or to cancelled with a refund, and both outcomes are
// terminal. Creation and the balance debit form one unit.
package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order_desk_bot/internal/domain"
	"order_desk_bot/internal/logging"
)

const (
	orderIDDigits = 6
	orderIDSpace  = 1000000
)

type orderCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type balanceLedger interface {
	Debit(ctx context.Context, userID int64, amount int64) error
	Credit(ctx context.Context, userID int64, amount int64) error
}

// Register persists orders and coordinates the paired balance movements.
type Register struct {
	orders orderCollection
	ledger balanceLedger
	logger *logrus.Entry

	idMu sync.Mutex
	rng  *rand.Rand
}

// NewRegister constructs a Register over the orders collection and the ledger.
func NewRegister(orders orderCollection, ledger balanceLedger, logger *logrus.Entry) *Register {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Register{
		orders: orders,
		ledger: ledger,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create debits the catalog price and inserts a pending order. The two steps
// are one unit: a failed debit creates no order, and a failed insert credits
// the price back so neither effect survives alone.
func (r *Register) Create(ctx context.Context, userID int64, kind, description string) (domain.Order, error) {
	if r == nil || r.orders == nil || r.ledger == nil {
		return domain.Order{}, errors.New("order register is not initialized")
	}
	if ctx == nil {
		return domain.Order{}, errors.New("context is required")
	}

	price, ok := domain.CatalogPrice(kind)
	if !ok {
		return domain.Order{}, fmt.Errorf("service kind %q: %w", kind, domain.ErrInvalidFormat)
	}

	if err := r.ledger.Debit(ctx, userID, price); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		UserID:      userID,
		Kind:        kind,
		Description: description,
		Price:       price,
		Status:      domain.OrderPending,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	for {
		order.OrderID = r.newOrderID()

		_, err := r.orders.InsertOne(ctx, order)
		if err == nil {
			break
		}
		if mongo.IsDuplicateKeyError(err) {
			continue
		}

		// Roll the debit back; the user must not pay for an order that was
		// never recorded.
		if creditErr := r.ledger.Credit(ctx, userID, price); creditErr != nil {
			r.logger.WithFields(logging.Fields{
				"event":   "order_rollback_failed",
				"user_id": userID,
				"amount":  price,
			}).WithError(creditErr).Error("failed to refund debit after order insert failure")
		}

		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":    "order_created",
		"order_id": order.OrderID,
		"user_id":  userID,
		"kind":     kind,
		"price":    price,
	}).Info("created order")

	return order, nil
}

// Confirm moves a pending order to in_progress. The pending status in the
// update filter makes a confirm/cancel race resolve to exactly one winner.
func (r *Register) Confirm(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order register is not initialized")
	}
	if ctx == nil {
		return domain.Order{}, errors.New("context is required")
	}

	result, err := r.orders.UpdateOne(ctx,
		bson.M{"order_id": orderID, "status": domain.OrderPending},
		bson.M{"$set": bson.M{"status": domain.OrderInProgress}},
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("confirm order: %w", err)
	}

	if result == nil || result.MatchedCount == 0 {
		order, lookupErr := r.Get(ctx, orderID)
		if lookupErr != nil {
			return domain.Order{}, lookupErr
		}
		return domain.Order{}, fmt.Errorf("confirm order %s in status %s: %w",
			orderID, order.Status, domain.ErrInvalidTransition)
	}

	r.logger.WithFields(logging.Fields{
		"event":    "order_confirmed",
		"order_id": orderID,
	}).Info("confirmed order")

	order, err := r.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// Cancel moves a pending order to cancelled and refunds its snapshotted price
// to the owner exactly once. Cancelling an order already in a terminal state
// fails with ErrInvalidTransition and refunds nothing.
func (r *Register) Cancel(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil || r.ledger == nil {
		return domain.Order{}, errors.New("order register is not initialized")
	}
	if ctx == nil {
		return domain.Order{}, errors.New("context is required")
	}

	order, err := r.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	result, err := r.orders.UpdateOne(ctx,
		bson.M{"order_id": orderID, "status": domain.OrderPending},
		bson.M{"$set": bson.M{"status": domain.OrderCancelled}},
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	if result == nil || result.MatchedCount == 0 {
		return domain.Order{}, fmt.Errorf("cancel order %s in status %s: %w",
			orderID, order.Status, domain.ErrInvalidTransition)
	}

	// The transition won; the refund now happens exactly once.
	if err := r.ledger.Credit(ctx, order.UserID, order.Price); err != nil {
		return domain.Order{}, fmt.Errorf("refund order %s: %w", orderID, err)
	}

	r.logger.WithFields(logging.Fields{
		"event":    "order_cancelled",
		"order_id": orderID,
		"user_id":  order.UserID,
		"refund":   order.Price,
	}).Info("cancelled order and refunded")

	order.Status = domain.OrderCancelled
	return order, nil
}

// Get fetches an order by id.
func (r *Register) Get(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order register is not initialized")
	}
	if ctx == nil {
		return domain.Order{}, errors.New("context is required")
	}

	result := r.orders.FindOne(ctx, bson.M{"order_id": orderID})
	if result == nil {
		return domain.Order{}, errors.New("find order returned no result")
	}
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("find order: %w", err)
	}

	var order domain.Order
	if err := result.Decode(&order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}

	return order, nil
}

func (r *Register) newOrderID() string {
	r.idMu.Lock()
	n := r.rng.Intn(orderIDSpace)
	r.idMu.Unlock()

	return fmt.Sprintf("%0*d", orderIDDigits, n)
}
