package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
	sharedredis "github.com/coughlinalbert1/distributed-banking/shared/redis"
)

const (
	accountViewKeyPrefix = "account:view:"
	usernameIndexPrefix  = "account:username:"
)

// AccountReadRepository handles all read operations for accounts. It treats
// Redis as the primary read store and falls back to PostgreSQL transparently,
// warming the cache on every cold read. A username -> user_id index key is
// maintained alongside each view so lookups by username avoid scanning.
type AccountReadRepository struct {
	db    *sql.DB
	redis *goredis.Client
	cache *sharedredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		redis: redisClient,
		cache: sharedredis.NewViewCache[models.AccountView](redisClient, 0),
	}
}

// GetByUserID returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByUserID(ctx context.Context, userID string) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, accountViewKeyPrefix+userID); ok {
		return view, nil
	}
	return r.queryView(ctx, "user_id", userID)
}

// GetByUsername resolves a username to its unique account. The Redis index
// key maps username to user_id; a miss falls back to the unique-indexed
// PostgreSQL column. Either way the result is one account or NotFound.
func (r *AccountReadRepository) GetByUsername(ctx context.Context, username string) (*models.AccountView, error) {
	if userID, err := r.redis.Get(ctx, usernameIndexPrefix+username).Result(); err == nil {
		if view, ok := r.cache.Get(ctx, accountViewKeyPrefix+userID); ok {
			return view, nil
		}
	}
	return r.queryView(ctx, "username", username)
}

func (r *AccountReadRepository) queryView(ctx context.Context, column, value string) (*models.AccountView, error) {
	query := fmt.Sprintf(`
		SELECT user_id, username, email, phone_number, first_name, last_name, balance, created_at, updated_at
		FROM accounts
		WHERE %s = $1
	`, column)

	var view models.AccountView
	var phone sql.NullString

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&view.UserID, &view.Username, &view.Email,
		&phone, &view.FirstName, &view.LastName,
		&view.Balance, &view.CreatedAt, &view.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get account: %v", apperr.ErrInternal, err)
	}
	if phone.Valid {
		view.PhoneNumber = phone.String
	}

	// Warm the cache
	r.CacheAccountView(ctx, &view)
	return &view, nil
}

// CacheAccountView stores or refreshes the Redis read model for an account
// and its username index entry. Called by the command service after every
// mutation to keep the read model current.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKeyPrefix+view.UserID, view)
	if err := r.redis.Set(ctx, usernameIndexPrefix+view.Username, view.UserID, 0).Err(); err != nil {
		// Non-fatal: username lookups fall back to PostgreSQL.
		return
	}
}
