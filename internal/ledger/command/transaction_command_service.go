package command

import (
	"context"
	"fmt"
	"log"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/events"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
	"github.com/coughlinalbert1/distributed-banking/shared/utils"
)

// TransactionCommandService is the balance mutation engine. Every operation
// resolves the acting account from the verified token claims, checks that the
// account's username matches the claimed identity, and applies the mutation
// through the row-locked repository so concurrent mutations serialize.
type TransactionCommandService struct {
	accounts  AccountStore
	readRepo  ViewCacher
	publisher EventPublisher
}

func NewTransactionCommandService(accounts AccountStore, readRepo ViewCacher, publisher EventPublisher) *TransactionCommandService {
	return &TransactionCommandService{
		accounts:  accounts,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

// Deposit credits the acting identity's account and returns the new balance.
func (s *TransactionCommandService) Deposit(cmd cqrs.DepositCommand) (float64, error) {
	if cmd.Amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	ctx := context.Background()

	account, err := s.resolveSelf(cmd.UserID, cmd.Username)
	if err != nil {
		return 0, err
	}

	newBalance, err := s.accounts.Deposit(ctx, account.UserID, cmd.Amount)
	if err != nil {
		return 0, err
	}

	s.refreshView(ctx, account, newBalance)
	s.publishTransaction(ctx, account.UserID, "deposit", cmd.Amount, "")
	s.publishBalance(ctx, account.UserID, newBalance, cmd.Amount)
	return newBalance, nil
}

// Withdraw debits the acting identity's account and returns the new balance.
// An amount exceeding the balance is rejected with ErrInsufficientFunds; the
// account never overdraws.
func (s *TransactionCommandService) Withdraw(cmd cqrs.WithdrawCommand) (float64, error) {
	if cmd.Amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	ctx := context.Background()

	account, err := s.resolveSelf(cmd.UserID, cmd.Username)
	if err != nil {
		return 0, err
	}

	newBalance, err := s.accounts.Withdraw(ctx, account.UserID, cmd.Amount)
	if err != nil {
		return 0, err
	}

	s.refreshView(ctx, account, newBalance)
	s.publishTransaction(ctx, account.UserID, "withdrawal", cmd.Amount, "")
	s.publishBalance(ctx, account.UserID, newBalance, -cmd.Amount)
	return newBalance, nil
}

// Transfer moves funds from the acting identity's account to the receiver's.
// The sender is always resolved from the token claims, never from a
// client-supplied field. Both legs commit atomically in the repository;
// conservation holds whether the call succeeds or fails.
func (s *TransactionCommandService) Transfer(cmd cqrs.TransferCommand) (float64, error) {
	if cmd.Amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	ctx := context.Background()

	sender, err := s.resolveSelf(cmd.UserID, cmd.Username)
	if err != nil {
		return 0, err
	}
	receiver, err := s.accounts.GetByUsername(cmd.ReceiverUsername)
	if err != nil {
		return 0, err
	}

	senderBalance, receiverBalance, err := s.accounts.Transfer(ctx, sender.UserID, receiver.UserID, cmd.Amount)
	if err != nil {
		return 0, err
	}

	s.refreshView(ctx, sender, senderBalance)
	s.refreshView(ctx, receiver, receiverBalance)
	s.publishTransaction(ctx, sender.UserID, "transfer", cmd.Amount, receiver.UserID)
	s.publishBalance(ctx, sender.UserID, senderBalance, -cmd.Amount)
	s.publishBalance(ctx, receiver.UserID, receiverBalance, cmd.Amount)
	return senderBalance, nil
}

// resolveSelf loads the acting identity's account and checks that its
// username matches the token subject.
func (s *TransactionCommandService) resolveSelf(userID, username string) (*models.Account, error) {
	account, err := s.accounts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account.Username != username {
		return nil, fmt.Errorf("%w: account does not belong to the authenticated identity", apperr.ErrForbidden)
	}
	return account, nil
}

func (s *TransactionCommandService) refreshView(ctx context.Context, account *models.Account, balance float64) {
	account.Balance = balance
	s.readRepo.CacheAccountView(ctx, accountToView(account))
}

func (s *TransactionCommandService) publishTransaction(ctx context.Context, userID, txType string, amount float64, counterpartyID string) {
	err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID:      utils.GenerateID("tan"),
		UserID:             userID,
		Type:               txType,
		Amount:             amount,
		CounterpartyUserID: counterpartyID,
	})
	if err != nil {
		log.Printf("Failed to publish transaction.created event: %v", err)
	}
}

func (s *TransactionCommandService) publishBalance(ctx context.Context, userID string, newBalance, change float64) {
	err := s.publisher.Publish(ctx, events.AccountEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		UserID:     userID,
		NewBalance: newBalance,
		Change:     change,
	})
	if err != nil {
		log.Printf("Failed to publish balance.updated event: %v", err)
	}
}
