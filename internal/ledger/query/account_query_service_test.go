package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

type fakeViewStore struct {
	views map[string]*models.AccountView
	calls int
}

func (f *fakeViewStore) GetByUserID(ctx context.Context, userID string) (*models.AccountView, error) {
	f.calls++
	if view, ok := f.views[userID]; ok {
		return view, nil
	}
	return nil, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
}

func (f *fakeViewStore) GetByUsername(ctx context.Context, username string) (*models.AccountView, error) {
	f.calls++
	for _, view := range f.views {
		if view.Username == username {
			return view, nil
		}
	}
	return nil, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
}

func TestGetAccount(t *testing.T) {
	store := &fakeViewStore{views: map[string]*models.AccountView{
		"usr-001": {UserID: "usr-001", Username: "alice", Balance: 100},
	}}
	svc := NewAccountQueryService(store)

	view, err := svc.GetAccount(cqrs.GetAccountQuery{UserID: "usr-001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Username != "alice" || view.Balance != 100 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestGetAccountUnknown(t *testing.T) {
	svc := NewAccountQueryService(&fakeViewStore{views: map[string]*models.AccountView{}})

	_, err := svc.GetAccount(cqrs.GetAccountQuery{UserID: "usr-404"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetAccountMalformedIDSkipsStore(t *testing.T) {
	store := &fakeViewStore{views: map[string]*models.AccountView{}}
	svc := NewAccountQueryService(store)

	_, err := svc.GetAccount(cqrs.GetAccountQuery{UserID: "bogus"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if store.calls != 0 {
		t.Errorf("expected no store lookup for a malformed ID, got %d", store.calls)
	}
}

func TestGetAccountByUsername(t *testing.T) {
	store := &fakeViewStore{views: map[string]*models.AccountView{
		"usr-001": {UserID: "usr-001", Username: "alice", Balance: 100},
	}}
	svc := NewAccountQueryService(store)

	view, err := svc.GetAccountByUsername(cqrs.GetAccountByUsernameQuery{Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.UserID != "usr-001" {
		t.Errorf("unexpected view: %+v", view)
	}
}
