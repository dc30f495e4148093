package domain

import "time"

// Ticket statuses.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket represents a support request. Response is set exactly once, when the
// operator closes the ticket.
type Ticket struct {
	TicketID  int64     `bson:"ticket_id" json:"ticket_id"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	Message   string    `bson:"message" json:"message"`
	Status    string    `bson:"status" json:"status"`
	Response  string    `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
