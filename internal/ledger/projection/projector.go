// Package projection keeps the Redis read model converged across ledger
// replicas. A replica that did not serve a mutation re-warms the shared
// account view when the balance.updated event arrives.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/coughlinalbert1/distributed-banking/internal/ledger/repository"
	"github.com/coughlinalbert1/distributed-banking/shared/events"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

type Projector struct {
	writeRepo *repository.AccountWriteRepository
	readRepo  *repository.AccountReadRepository
}

func NewProjector(writeRepo *repository.AccountWriteRepository, readRepo *repository.AccountReadRepository) *Projector {
	return &Projector{writeRepo: writeRepo, readRepo: readRepo}
}

// HandleAccountEvent refreshes the cached account view from the write store
// after a balance change. Re-reading the source of truth makes the handler
// idempotent under at-least-once delivery: applying the same event twice
// converges to the same view.
func (p *Projector) HandleAccountEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.BalanceUpdated {
		return nil
	}

	dataBytes, _ := json.Marshal(event.Data)
	var data events.BalanceUpdatedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal balance.updated event: %w", err)
	}

	account, err := p.writeRepo.GetByUserID(data.UserID)
	if err != nil {
		return fmt.Errorf("failed to load account for view refresh: %w", err)
	}

	p.readRepo.CacheAccountView(ctx, &models.AccountView{
		UserID:      account.UserID,
		Username:    account.Username,
		Email:       account.Email,
		PhoneNumber: account.PhoneNumber,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Balance:     account.Balance,
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	})
	log.Printf("Refreshed account view for %s (balance %.2f)", account.UserID, account.Balance)
	return nil
}
