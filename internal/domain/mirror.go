package domain

import "time"

// Mirror records a secondary bot token registered by a user. A token belongs
// to at most one user; the token unique index enforces this.
type Mirror struct {
	Token     string    `bson:"token" json:"token"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
