package domain

import "time"

// Ban states stored on the user record.
const (
	// BanNone marks a user in good standing.
	BanNone = "unbanned"
	// BanUntil marks a timed ban; BanUntil users regain access once
	// BanExpiresAt passes.
	BanUntil = "banned_until"
	// BanForever marks a permanent ban.
	BanForever = "banned_forever"
)

// Ban duration bounds accepted by the banuser command. DurationForever is the
// sentinel for a permanent ban.
const (
	DurationForever = -1
	MinBanDays      = 1
	MaxBanDays      = 1200
)

// User represents a Telegram user known to the bot.
type User struct {
	UserID       int64     `bson:"user_id" json:"user_id"`
	Username     string    `bson:"username,omitempty" json:"username,omitempty"`
	FirstName    string    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	Alias        string    `bson:"alias" json:"alias"`
	Balance      int64     `bson:"balance" json:"balance"`
	BanStatus    string    `bson:"ban_status" json:"ban_status"`
	BanReason    string    `bson:"ban_reason,omitempty" json:"ban_reason,omitempty"`
	BanExpiresAt time.Time `bson:"ban_expires_at,omitempty" json:"ban_expires_at,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Banned reports whether the user is refused service at the given instant.
func (u User) Banned(now time.Time) bool {
	switch u.BanStatus {
	case BanForever:
		return true
	case BanUntil:
		return now.Before(u.BanExpiresAt)
	default:
		return false
	}
}
