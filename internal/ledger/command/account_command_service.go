package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coughlinalbert1/distributed-banking/internal/ledger/identity"
	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/events"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

// AccountStore is the write-store capability the ledger's command services
// depend on. Implemented by repository.AccountWriteRepository.
type AccountStore interface {
	Create(*models.Account) error
	GetByUserID(userID string) (*models.Account, error)
	GetByUsername(username string) (*models.Account, error)
	UpdateAccessToken(userID, accessToken string) error
	Deposit(ctx context.Context, userID string, amount float64) (float64, error)
	Withdraw(ctx context.Context, userID string, amount float64) (float64, error)
	Transfer(ctx context.Context, senderID, receiverID string, amount float64) (float64, float64, error)
}

// ViewCacher keeps the Redis read model in sync after mutations.
type ViewCacher interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
}

// EventPublisher emits domain events to the Redis stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService creates accounts and handles login. Credential
// creation and verification are delegated to the auth service through the
// injected identity client; the ledger owns only the account record.
type AccountCommandService struct {
	accounts  AccountStore
	readRepo  ViewCacher
	identity  identity.Client
	publisher EventPublisher
}

func NewAccountCommandService(
	accounts AccountStore,
	readRepo ViewCacher,
	identityClient identity.Client,
	publisher EventPublisher,
) *AccountCommandService {
	return &AccountCommandService{
		accounts:  accounts,
		readRepo:  readRepo,
		identity:  identityClient,
		publisher: publisher,
	}
}

// CreateAccount registers the credential with the auth service, then persists
// the account record keyed by the returned user ID. Username uniqueness is
// enforced upstream: a taken username surfaces as Conflict before any account
// row is written.
func (s *AccountCommandService) CreateAccount(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	ctx := context.Background()

	reg, err := s.identity.Register(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:      reg.UserID,
		Username:    cmd.Username,
		Email:       cmd.Email,
		PhoneNumber: cmd.PhoneNumber,
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Balance:     0.00,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}

	s.readRepo.CacheAccountView(ctx, accountToView(account))
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		UserID:   account.UserID,
		Username: account.Username,
		Email:    account.Email,
	}); err != nil {
		log.Printf("Failed to publish account.created event: %v", err)
	}
	return account, nil
}

// LoginResult is Login's answer: the issued token plus the account it belongs to.
type LoginResult struct {
	AccessToken string
	TokenType   string
	Account     *models.Account
}

// Login verifies credentials with the auth service, caches the issued token
// on the account record and returns both. The cached token is advisory;
// authorization always re-verifies signature and expiry.
func (s *AccountCommandService) Login(cmd cqrs.LoginCommand) (*LoginResult, error) {
	ctx := context.Background()

	res, err := s.identity.Login(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUsername(cmd.Username)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateAccessToken(account.UserID, res.AccessToken); err != nil {
		return nil, fmt.Errorf("%w: failed to cache access token: %v", apperr.ErrInternal, err)
	}
	account.AccessToken = res.AccessToken

	s.readRepo.CacheAccountView(ctx, accountToView(account))
	return &LoginResult{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		Account:     account,
	}, nil
}

// accountToView converts the PostgreSQL write model to the Redis read view model.
func accountToView(a *models.Account) *models.AccountView {
	return &models.AccountView{
		UserID:      a.UserID,
		Username:    a.Username,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
