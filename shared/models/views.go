package models

import "time"

// AccountView is the read-optimised projection of an account. It never
// exposes the cached access token. Username is populated so services can
// check the acting identity against the account being mutated.
type AccountView struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Balance     float64   `json:"balance"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}
