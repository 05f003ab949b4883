package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

// CredentialRepository stores credential records in PostgreSQL. The
// credentials table carries a unique index on username, which is the
// authoritative uniqueness guarantee behind registration; the service-level
// pre-check only exists to produce a friendly error without a failed insert.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(cred *models.Credential) error {
	query := `
		INSERT INTO credentials (user_id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(query, cred.UserID, cred.Username, cred.PasswordHash, cred.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: username already registered", apperr.ErrConflict)
		}
		return fmt.Errorf("%w: failed to create credential: %v", apperr.ErrInternal, err)
	}
	return nil
}

func (r *CredentialRepository) GetByUsername(username string) (*models.Credential, error) {
	query := `
		SELECT user_id, username, password_hash, created_at
		FROM credentials
		WHERE username = $1
	`
	var cred models.Credential
	err := r.db.QueryRow(query, username).Scan(
		&cred.UserID, &cred.Username, &cred.PasswordHash, &cred.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no user with username %s", apperr.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get credential: %v", apperr.ErrInternal, err)
	}
	return &cred, nil
}
