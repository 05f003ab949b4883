package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"

	AccountCreated = "account.created"
	BalanceUpdated = "balance.updated"

	TransactionCreated = "transaction.created"
)

// Stream names
const (
	UserEventsStream        = "user.events"
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Auth events
type UserRegisteredEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Ledger events
type AccountCreatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TransactionCreatedEvent struct {
	TransactionID string  `json:"transactionId"`
	UserID        string  `json:"userId"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	// CounterpartyUserID is set for transfers: the other side of the movement.
	CounterpartyUserID string `json:"counterpartyUserId,omitempty"`
}

type BalanceUpdatedEvent struct {
	UserID     string  `json:"userId"`
	NewBalance float64 `json:"newBalance"`
	Change     float64 `json:"change"`
}
