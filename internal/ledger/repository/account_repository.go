package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of
// truth). Balance mutations run inside a transaction that locks the affected
// rows, so two concurrent mutations on the same account serialize instead of
// overwriting each other, and a transfer commits both legs or neither.
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

func (r *AccountWriteRepository) Create(account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, username, email, phone_number, first_name, last_name, balance, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		account.UserID, account.Username, account.Email,
		nullString(account.PhoneNumber), account.FirstName, account.LastName,
		account.Balance, nullString(account.AccessToken),
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: account already exists", apperr.ErrConflict)
		}
		return fmt.Errorf("%w: failed to create account: %v", apperr.ErrInternal, err)
	}
	return nil
}

func (r *AccountWriteRepository) GetByUserID(userID string) (*models.Account, error) {
	return r.getBy("user_id", userID)
}

func (r *AccountWriteRepository) GetByUsername(username string) (*models.Account, error) {
	return r.getBy("username", username)
}

// getBy fetches a single account by a unique-indexed column. Both user_id
// (primary key) and username (unique) resolve to at most one row, preserving
// the one-account-per-identity contract.
func (r *AccountWriteRepository) getBy(column, value string) (*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT user_id, username, email, phone_number, first_name, last_name, balance, access_token, created_at, updated_at
		FROM accounts
		WHERE %s = $1
	`, column)

	var account models.Account
	var phone, accessToken sql.NullString

	err := r.db.QueryRow(query, value).Scan(
		&account.UserID, &account.Username, &account.Email,
		&phone, &account.FirstName, &account.LastName,
		&account.Balance, &accessToken,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get account: %v", apperr.ErrInternal, err)
	}
	if phone.Valid {
		account.PhoneNumber = phone.String
	}
	if accessToken.Valid {
		account.AccessToken = accessToken.String
	}
	return &account, nil
}

// UpdateAccessToken caches the latest issued token on the account record.
// The cache is advisory: token validity is always re-derived from
// signature and expiry, never from this column.
func (r *AccountWriteRepository) UpdateAccessToken(userID, accessToken string) error {
	query := `
		UPDATE accounts
		SET access_token = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.db.Exec(query, userID, accessToken)
	if err != nil {
		return fmt.Errorf("%w: failed to update access token: %v", apperr.ErrInternal, err)
	}
	return checkRowsAffected(result)
}

// Deposit atomically credits an account and returns the new balance.
func (r *AccountWriteRepository) Deposit(ctx context.Context, userID string, amount float64) (float64, error) {
	return r.adjustBalance(ctx, userID, amount, false)
}

// Withdraw atomically debits an account and returns the new balance.
// Overdrafts are rejected with ErrInsufficientFunds.
func (r *AccountWriteRepository) Withdraw(ctx context.Context, userID string, amount float64) (float64, error) {
	return r.adjustBalance(ctx, userID, -amount, true)
}

func (r *AccountWriteRepository) adjustBalance(ctx context.Context, userID string, delta float64, checkFunds bool) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", apperr.ErrInternal, err)
	}
	defer tx.Rollback()

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if checkFunds && balance+delta < 0 {
		return 0, fmt.Errorf("%w: balance %.2f, requested %.2f", apperr.ErrInsufficientFunds, balance, -delta)
	}

	newBalance := balance + delta
	if err := setBalance(ctx, tx, userID, newBalance); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit balance update: %v", apperr.ErrInternal, err)
	}
	return newBalance, nil
}

// Transfer debits the sender and credits the receiver as one transaction.
// Both rows are locked in user_id order so concurrent transfers between the
// same pair cannot deadlock, the funds check runs against the locked sender
// balance, and the commit is all-or-nothing: no partially applied transfer
// is ever persisted.
func (r *AccountWriteRepository) Transfer(ctx context.Context, senderID, receiverID string, amount float64) (senderBalance, receiverBalance float64, err error) {
	if senderID == receiverID {
		return 0, 0, fmt.Errorf("%w: cannot transfer to the same account", apperr.ErrConflict)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: failed to begin transaction: %v", apperr.ErrInternal, err)
	}
	defer tx.Rollback()

	// Stable lock order regardless of transfer direction.
	first, second := senderID, receiverID
	if second < first {
		first, second = second, first
	}
	balances := make(map[string]float64, 2)
	for _, id := range []string{first, second} {
		balance, lockErr := lockBalance(ctx, tx, id)
		if lockErr != nil {
			return 0, 0, lockErr
		}
		balances[id] = balance
	}

	if balances[senderID] < amount {
		return 0, 0, fmt.Errorf("%w: balance %.2f, requested %.2f", apperr.ErrInsufficientFunds, balances[senderID], amount)
	}

	senderBalance = balances[senderID] - amount
	receiverBalance = balances[receiverID] + amount
	if err := setBalance(ctx, tx, senderID, senderBalance); err != nil {
		return 0, 0, err
	}
	if err := setBalance(ctx, tx, receiverID, receiverBalance); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%w: failed to commit transfer: %v", apperr.ErrInternal, err)
	}
	return senderBalance, receiverBalance, nil
}

func lockBalance(ctx context.Context, tx *sql.Tx, userID string) (float64, error) {
	var balance float64
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to lock account row: %v", apperr.ErrInternal, err)
	}
	return balance, nil
}

func setBalance(ctx context.Context, tx *sql.Tx, userID string, balance float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, balance,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update balance: %v", apperr.ErrInternal, err)
	}
	return nil
}

func checkRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check rows affected: %v", apperr.ErrInternal, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: account not found", apperr.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
