package cqrs

// ---------- Auth commands ----------

type RegisterCommand struct {
	Username string
	Password string
}

type AuthenticateCommand struct {
	Username string
	Password string
}

type LoginCommand struct {
	Username string
	Password string
}

// ---------- Ledger commands ----------

type CreateAccountCommand struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
	FirstName   string
	LastName    string
}

// DepositCommand credits the acting identity's own account. UserID and
// Username come from the verified token claims, never from the request body.
type DepositCommand struct {
	UserID   string
	Username string
	Amount   float64
}

type WithdrawCommand struct {
	UserID   string
	Username string
	Amount   float64
}

// TransferCommand moves funds from the acting identity's account to the
// account owned by ReceiverUsername.
type TransferCommand struct {
	UserID           string
	Username         string
	ReceiverUsername string
	Amount           float64
}
