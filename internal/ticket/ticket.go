// Package ticket owns support tickets: created open, closed exactly once when
// the operator responds.
package ticket

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

type ticketCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type idSequence interface {
	Next(ctx context.Context) (int64, error)
}

// Register persists support tickets with serial ids.
type Register struct {
	tickets ticketCollection
	ids     idSequence
	logger  *logrus.Entry
}

// NewRegister constructs a Register over the tickets collection and the id
// sequence.
func NewRegister(tickets ticketCollection, ids idSequence, logger *logrus.Entry) *Register {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Register{
		tickets: tickets,
		ids:     ids,
		logger:  logger,
	}
}

// Create opens a ticket for the user's message.
func (r *Register) Create(ctx context.Context, userID int64, message string) (domain.Ticket, error) {
	if r == nil || r.tickets == nil || r.ids == nil {
		return domain.Ticket{}, errors.New("ticket register is not initialized")
	}
	if ctx == nil {
		return domain.Ticket{}, errors.New("context is required")
	}

	ticketID, err := r.ids.Next(ctx)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("issue ticket id: %w", err)
	}

	ticket := domain.Ticket{
		TicketID:  ticketID,
		UserID:    userID,
		Message:   message,
		Status:    domain.TicketOpen,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.tickets.InsertOne(ctx, ticket); err != nil {
		return domain.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}

	r.logger.WithFields(logging.Fields{
		"event":     "ticket_opened",
		"ticket_id": ticketID,
		"user_id":   userID,
	}).Info("opened support ticket")

	return ticket, nil
}

// Respond stores the operator's response and closes the ticket. A closed
// ticket cannot be responded to again.
func (r *Register) Respond(ctx context.Context, ticketID int64, response string) (domain.Ticket, error) {
	if r == nil || r.tickets == nil {
		return domain.Ticket{}, errors.New("ticket register is not initialized")
	}
	if ctx == nil {
		return domain.Ticket{}, errors.New("context is required")
	}

	ticket, err := r.Get(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}

	result, err := r.tickets.UpdateOne(ctx,
		bson.M{"ticket_id": ticketID, "status": domain.TicketOpen},
		bson.M{"$set": bson.M{
			"status":   domain.TicketClosed,
			"response": response,
		}},
	)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("respond to ticket: %w", err)
	}

	if result == nil || result.MatchedCount == 0 {
		return domain.Ticket{}, fmt.Errorf("ticket %d already %s: %w",
			ticketID, ticket.Status, domain.ErrInvalidTransition)
	}

	r.logger.WithFields(logging.Fields{
		"event":     "ticket_closed",
		"ticket_id": ticketID,
	}).Info("closed support ticket")

	ticket.Status = domain.TicketClosed
	ticket.Response = response
	return ticket, nil
}

// Get fetches a ticket by id.
func (r *Register) Get(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	if r == nil || r.tickets == nil {
		return domain.Ticket{}, errors.New("ticket register is not initialized")
	}
	if ctx == nil {
		return domain.Ticket{}, errors.New("context is required")
	}

	result := r.tickets.FindOne(ctx, bson.M{"ticket_id": ticketID})
	if result == nil {
		return domain.Ticket{}, errors.New("find ticket returned no result")
	}
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Ticket{}, fmt.Errorf("ticket %d: %w", ticketID, domain.ErrNotFound)
		}
		return domain.Ticket{}, fmt.Errorf("find ticket: %w", err)
	}

	var ticket domain.Ticket
	if err := result.Decode(&ticket); err != nil {
		return domain.Ticket{}, fmt.Errorf("decode ticket: %w", err)
	}

	return ticket, nil
}
