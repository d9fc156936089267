package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/repository"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session state repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.get(ctx, userID, repository.StateCart, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *sessionRepository) SaveCart(ctx context.Context, userID string, cart domain.Cart) error {
	return r.put(ctx, userID, repository.StateCart, cart)
}

func (r *sessionRepository) GetWishlist(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.get(ctx, userID, repository.StateWishlist, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sessionRepository) SaveWishlist(ctx context.Context, userID string, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	return r.put(ctx, userID, repository.StateWishlist, productIDs)
}

func (r *sessionRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := r.get(ctx, userID, repository.StateProfile, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *sessionRepository) SaveProfile(ctx context.Context, userID string, profile domain.UserProfile) error {
	return r.put(ctx, userID, repository.StateProfile, profile)
}

func (r *sessionRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM storefront_state WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		r.logger.Error("Failed to clear session state", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) get(ctx context.Context, userID, key string, dest interface{}) error {
	query := `
		SELECT value
		FROM storefront_state
		WHERE user_id = $1 AND state_key = $2
	`

	var raw string
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return &errors.ErrNotFound{Resource: key, ID: userID}
	}
	if err != nil {
		r.logger.Error("Failed to get session state", zap.String("user_id", userID), zap.String("state_key", key), zap.Error(err))
		return err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		r.logger.Error("Failed to decode session state", zap.String("user_id", userID), zap.String("state_key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) put(ctx context.Context, userID, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO storefront_state (user_id, state_key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, state_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, userID, key, string(raw), time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to save session state", zap.String("user_id", userID), zap.String("state_key", key), zap.Error(err))
		return err
	}
	return nil
}
