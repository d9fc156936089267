package repository

import (
	"context"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
)

// State keys persisted per user
const (
	StateCart     = "cart"
	StateWishlist = "wishlist"
	StateProfile  = "profile"
)

// SessionRepository persists the client-side session state of a user.
// Getters return *errors.ErrNotFound when nothing was saved yet.
type SessionRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, userID string, cart domain.Cart) error
	GetWishlist(ctx context.Context, userID string) ([]string, error)
	SaveWishlist(ctx context.Context, userID string, productIDs []string) error
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, profile domain.UserProfile) error
	Clear(ctx context.Context, userID string) error
}

// Repositories holds all repository instances
type Repositories struct {
	Session SessionRepository
}
