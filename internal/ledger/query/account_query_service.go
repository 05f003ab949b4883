package query

import (
	"context"
	"fmt"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
	"github.com/coughlinalbert1/distributed-banking/shared/utils"
)

// AccountViewStore is the read-model capability the query service depends on.
// Implemented by repository.AccountReadRepository.
type AccountViewStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.AccountView, error)
	GetByUsername(ctx context.Context, username string) (*models.AccountView, error)
}

// AccountQueryService serves account reads from the Redis-backed read model.
type AccountQueryService struct {
	readRepo AccountViewStore
}

func NewAccountQueryService(readRepo AccountViewStore) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

func (s *AccountQueryService) GetAccount(q cqrs.GetAccountQuery) (*models.AccountView, error) {
	// A malformed ID can never match an account; skip the store round trip.
	if !utils.ValidateUserID(q.UserID) {
		return nil, fmt.Errorf("%w: invalid user ID %q", apperr.ErrNotFound, q.UserID)
	}
	return s.readRepo.GetByUserID(context.Background(), q.UserID)
}

func (s *AccountQueryService) GetAccountByUsername(q cqrs.GetAccountByUsernameQuery) (*models.AccountView, error) {
	return s.readRepo.GetByUsername(context.Background(), q.Username)
}
