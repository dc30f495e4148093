package domain

import "time"

// Service kinds offered in the catalog.
const (
	KindSiteEasy = "site_easy"
	KindSiteHard = "site_hard"
	KindBot      = "bot"
)

// Order statuses. InProgress and Cancelled are terminal.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCancelled  = "cancelled"
)

// CatalogPrice returns the current price for a service kind. Prices apply at
// order creation only; existing orders keep their snapshotted price.
func CatalogPrice(kind string) (int64, bool) {
	switch kind {
	case KindSiteEasy:
		return 49, true
	case KindSiteHard:
		return 69, true
	case KindBot:
		return 99, true
	default:
		return 0, false
	}
}

// ServiceName returns the display name for a service kind.
func ServiceName(kind string) string {
	switch kind {
	case KindSiteEasy:
		return "Site (Easy)"
	case KindSiteHard:
		return "Site (Hard)"
	case KindBot:
		return "Telegram Bot"
	default:
		return kind
	}
}

// Order represents a purchase of a catalog item. Price is snapshotted at
// creation and never changes afterwards.
type Order struct {
	OrderID     string    `bson:"order_id" json:"order_id"`
	UserID      int64     `bson:"user_id" json:"user_id"`
	Kind        string    `bson:"kind" json:"kind"`
	Description string    `bson:"description" json:"description"`
	Price       int64     `bson:"price" json:"price"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
