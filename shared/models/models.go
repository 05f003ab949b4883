package models

import "time"

// Credential is the identity root stored by the auth service: a username and
// its bcrypt hash keyed by a generated user ID. Never mutated after creation.
type Credential struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

// Account is the ledger-owned record: profile fields, a mutable balance and
// the last issued access token. UserID is the credential's ID and stays
// stable for the life of the account. Username is a denormalized copy of the
// credential's username and must remain consistent with it.
type Account struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Balance     float64   `json:"balance"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}
