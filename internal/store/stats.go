// Package store encapsulates MongoDB client management and collection helpers.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type countCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Stats aggregates collection counts for operator diagnostics.
type Stats struct {
	Users       int64
	Orders      int64
	OpenTickets int64
}

// StatsProvider exposes helper methods to retrieve collection counts for basic
// diagnostics without leaking MongoDB internals to callers.
type StatsProvider struct {
	users   countCollection
	orders  countCollection
	tickets countCollection
}

// NewStatsProvider constructs a StatsProvider backed by the provided
// collections.
func NewStatsProvider(users, orders, tickets countCollection) *StatsProvider {
	return &StatsProvider{
		users:   users,
		orders:  orders,
		tickets: tickets,
	}
}

// CountUsers returns the number of documents in the users collection.
func (p *StatsProvider) CountUsers(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.users == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// CountOrders returns the number of documents in the orders collection.
func (p *StatsProvider) CountOrders(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.orders == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.orders.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}

	return count, nil
}

// CountOpenTickets returns the number of open tickets.
func (p *StatsProvider) CountOpenTickets(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.tickets == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.tickets.CountDocuments(ctx, bson.M{"status": "open"})
	if err != nil {
		return 0, fmt.Errorf("count open tickets: %w", err)
	}

	return count, nil
}

// Snapshot collects all counts in one call for the /stats command.
func (p *StatsProvider) Snapshot(ctx context.Context) (Stats, error) {
	users, err := p.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}

	orders, err := p.CountOrders(ctx)
	if err != nil {
		return Stats{}, err
	}

	tickets, err := p.CountOpenTickets(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{Users: users, Orders: orders, OpenTickets: tickets}, nil
}
