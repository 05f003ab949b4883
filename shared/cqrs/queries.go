package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account by its credential's user ID.
type GetAccountQuery struct {
	UserID string
}

// GetAccountByUsernameQuery fetches a single account by username.
// Usernames are unique; the result is exactly one account or a miss.
type GetAccountByUsernameQuery struct {
	Username string
}
