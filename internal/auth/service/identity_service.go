// Package service implements the identity operations: registration,
// credential verification and token issuance. The token issuer is embedded
// here rather than running as a fourth service; the ledger only ever sees
// the signed token.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/events"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
	"github.com/coughlinalbert1/distributed-banking/shared/token"
	"github.com/coughlinalbert1/distributed-banking/shared/utils"
)

// CredentialStore is the persistence capability the identity service depends on.
type CredentialStore interface {
	Create(*models.Credential) error
	GetByUsername(username string) (*models.Credential, error)
}

// EventPublisher emits domain events; nil-safe fakes substitute it in tests.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type IdentityService struct {
	creds     CredentialStore
	issuer    *token.Issuer
	publisher EventPublisher
}

func NewIdentityService(creds CredentialStore, issuer *token.Issuer, publisher EventPublisher) *IdentityService {
	return &IdentityService{creds: creds, issuer: issuer, publisher: publisher}
}

// Register creates a credential record for a new username. The username must
// not already exist; the password is stored only as a bcrypt hash.
func (s *IdentityService) Register(cmd cqrs.RegisterCommand) (*models.Credential, error) {
	_, err := s.creds.GetByUsername(cmd.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: username already registered", apperr.ErrConflict)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperr.ErrInternal, err)
	}

	cred := &models.Credential{
		UserID:       utils.GenerateID("usr"),
		Username:     cmd.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.creds.Create(cred); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:   cred.UserID,
		Username: cred.Username,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}
	return cred, nil
}

// Authenticate resolves a (username, password) pair to a credential record.
// An unknown username is NotFound; a bad password is Unauthorized. The two
// are distinguishable in the response, a known information leak carried over
// from the original API shape. The hash comparison itself is constant time.
func (s *IdentityService) Authenticate(cmd cqrs.AuthenticateCommand) (*models.Credential, error) {
	cred, err := s.creds.GetByUsername(cmd.Username)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, cred.PasswordHash) {
		return nil, fmt.Errorf("%w: incorrect password", apperr.ErrUnauthorized)
	}
	return cred, nil
}

// Login verifies credentials and issues a bearer token for the identity.
func (s *IdentityService) Login(cmd cqrs.LoginCommand) (string, error) {
	cred, err := s.Authenticate(cqrs.AuthenticateCommand{
		Username: cmd.Username,
		Password: cmd.Password,
	})
	if err != nil {
		return "", err
	}
	signed, err := s.issuer.Issue(cred.UserID, cred.Username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	return signed, nil
}
