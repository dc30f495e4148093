package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order_desk_bot/internal/domain"
)

func TestCreateDebitsAndInsertsPendingOrder(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	orders := newFakeOrders()
	register := NewRegister(orders, ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindBot, "a shop bot")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), created.OrderID)
	assert.Equal(t, domain.OrderPending, created.Status)
	assert.Equal(t, int64(99), created.Price)
	assert.Equal(t, int64(101), ledger.balance(100), "price debited exactly once")

	stored, ok := orders.snapshot(created.OrderID)
	require.True(t, ok)
	assert.Equal(t, "a shop bot", stored.Description)
}

func TestCreateWithInsufficientFundsLeavesNoOrder(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 0})
	orders := newFakeOrders()
	register := NewRegister(orders, ledger, nil)

	_, err := register.Create(context.Background(), 100, domain.KindSiteEasy, "landing page")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Zero(t, ledger.balance(100), "balance unchanged")
	assert.Zero(t, orders.count(), "no order record exists")
}

func TestCreateCompensatesDebitWhenInsertFails(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	orders := newFakeOrders()
	orders.insertErr = errors.New("write concern failure")
	register := NewRegister(orders, ledger, nil)

	_, err := register.Create(context.Background(), 100, domain.KindBot, "a shop bot")
	require.Error(t, err)

	assert.Equal(t, int64(200), ledger.balance(100), "debit rolled back")
	assert.Zero(t, orders.count())
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 1000})
	register := NewRegister(newFakeOrders(), ledger, nil)

	_, err := register.Create(context.Background(), 100, "yacht", "a yacht")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
	assert.Equal(t, int64(1000), ledger.balance(100))
}

func TestCreateRetriesOnOrderIDCollision(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 500})
	orders := newFakeOrders()
	orders.duplicateInserts = 2
	register := NewRegister(orders, ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindSiteHard, "web shop")
	require.NoError(t, err)
	assert.Equal(t, 1, orders.count())
	assert.Equal(t, int64(500-69), ledger.balance(100))
	assert.NotEmpty(t, created.OrderID)
}

func TestConfirmTransitionsPendingToInProgress(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	orders := newFakeOrders()
	register := NewRegister(orders, ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindBot, "bot")
	require.NoError(t, err)

	confirmed, err := register.Confirm(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInProgress, confirmed.Status)

	_, err = register.Confirm(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "double confirm is rejected")
}

func TestConfirmUnknownOrder(t *testing.T) {
	register := NewRegister(newFakeOrders(), newFakeLedger(nil), nil)

	_, err := register.Confirm(context.Background(), "000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelRefundsSnapshottedPriceExactlyOnce(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	orders := newFakeOrders()
	register := NewRegister(orders, ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindBot, "bot")
	require.NoError(t, err)
	require.Equal(t, int64(101), ledger.balance(100))

	cancelled, err := register.Cancel(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)
	assert.Equal(t, int64(99), cancelled.Price)
	assert.Equal(t, int64(200), ledger.balance(100), "full price refunded")

	_, err = register.Cancel(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(200), ledger.balance(100), "no double refund")
}

func TestCancelAfterConfirmIsRejected(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	register := NewRegister(newFakeOrders(), ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindBot, "bot")
	require.NoError(t, err)

	_, err = register.Confirm(context.Background(), created.OrderID)
	require.NoError(t, err)

	_, err = register.Cancel(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(101), ledger.balance(100), "in-progress order is never refunded")
}

func TestConcurrentConfirmAndCancelHaveOneWinner(t *testing.T) {
	ledger := newFakeLedger(map[int64]int64{100: 200})
	orders := newFakeOrders()
	register := NewRegister(orders, ledger, nil)

	created, err := register.Create(context.Background(), 100, domain.KindBot, "bot")
	require.NoError(t, err)

	var wg sync.WaitGroup
	outcomes := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := register.Confirm(context.Background(), created.OrderID)
		outcomes <- err
	}()
	go func() {
		defer wg.Done()
		_, err := register.Cancel(context.Background(), created.OrderID)
		outcomes <- err
	}()
	wg.Wait()
	close(outcomes)

	var wins int
	for err := range outcomes {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}

	assert.Equal(t, 1, wins, "exactly one of confirm/cancel wins")

	final, ok := orders.snapshot(created.OrderID)
	require.True(t, ok)
	if final.Status == domain.OrderCancelled {
		assert.Equal(t, int64(200), ledger.balance(100))
	} else {
		assert.Equal(t, domain.OrderInProgress, final.Status)
		assert.Equal(t, int64(101), ledger.balance(100))
	}
}

// fakeOrders is an in-memory orders collection interpreting the filters the
// register issues: order_id equality with an optional status guard.
type fakeOrders struct {
	mu               sync.Mutex
	docs             map[string]domain.Order
	insertErr        error
	duplicateInserts int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{docs: make(map[string]domain.Order)}
}

func (f *fakeOrders) snapshot(orderID string) (domain.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.docs[orderID]
	return o, ok
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func (f *fakeOrders) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	filterDoc, ok := filter.(bson.M)
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, fmt.Errorf("unexpected filter type %T", filter), nil)
	}

	orderID, _ := filterDoc["order_id"].(string)
	if order, found := f.docs[orderID]; found {
		return mongo.NewSingleResultFromDocument(order, nil, nil)
	}

	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeOrders) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	order, ok := document.(domain.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected document type %T", document)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.duplicateInserts > 0 {
		f.duplicateInserts--
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
	}
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if _, exists := f.docs[order.OrderID]; exists {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
	}

	f.docs[order.OrderID] = order
	return &mongo.InsertOneResult{InsertedID: order.OrderID}, nil
}

func (f *fakeOrders) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	filterDoc, ok := filter.(bson.M)
	if !ok {
		return nil, fmt.Errorf("unexpected filter type %T", filter)
	}
	updateDoc, ok := update.(bson.M)
	if !ok {
		return nil, fmt.Errorf("unexpected update type %T", update)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	orderID, _ := filterDoc["order_id"].(string)
	order, found := f.docs[orderID]
	if !found {
		return &mongo.UpdateResult{}, nil
	}
	if wantStatus, guarded := filterDoc["status"].(string); guarded && order.Status != wantStatus {
		return &mongo.UpdateResult{}, nil
	}

	if set, ok := updateDoc["$set"].(bson.M); ok {
		if status, ok := set["status"].(string); ok {
			order.Status = status
		}
	}

	f.docs[orderID] = order
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

// fakeLedger applies debits and credits atomically, rejecting overdrafts the
// way the real ledger's conditional update does.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func newFakeLedger(balances map[int64]int64) *fakeLedger {
	if balances == nil {
		balances = make(map[int64]int64)
	}
	return &fakeLedger{balances: balances}
}

func (f *fakeLedger) balance(userID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

func (f *fakeLedger) Debit(ctx context.Context, userID int64, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.balances[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if current < amount {
		return domain.ErrInsufficientFunds
	}

	f.balances[userID] = current - amount
	return nil
}

func (f *fakeLedger) Credit(ctx context.Context, userID int64, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.balances[userID]; !ok {
		return domain.ErrNotFound
	}

	f.balances[userID] += amount
	return nil
}
