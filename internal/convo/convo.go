// Package convo tracks the multi-step conversation each user is in the middle
// of: describing an order, depositing, writing to support, or registering a
// mirror token. State lives in memory only and is lost on restart.
package convo

import "sync"

// Kinds of pending conversation steps.
const (
	KindOrderDescription = "order_description"
	KindCancelReason     = "cancel_reason"
	KindSupportMessage   = "support_message"
	KindMirrorToken      = "mirror_token"
	KindTicketResponse   = "ticket_response"
)

// State is what the next free-text message from a user means. Exactly the
// fields relevant to Kind are set.
type State struct {
	Kind        string
	ServiceKind string
	Price       int64
	OrderID     string
	TicketID    int64
}

// Tracker holds the pending conversation state per user.
type Tracker struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]State)}
}

// Set records the user's pending step, replacing any previous one. Starting a
// new flow abandons the old one.
func (t *Tracker) Set(userID int64, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[userID] = state
}

// Consume atomically returns and clears the user's pending state. A state is
// handed out at most once, so two racing messages cannot both act on it.
func (t *Tracker) Consume(userID int64) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[userID]
	if ok {
		delete(t.states, userID)
	}
	return state, ok
}

// Clear drops the user's pending state, if any.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, userID)
}
