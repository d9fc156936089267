package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/config"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

func newTestRepositories(t *testing.T) *sessionRepository {
	t.Helper()
	db, err := NewConnection(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "state.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db))
	require.NoError(t, RunMigrations(context.Background(), db), "migrations are repeatable")

	repos := NewRepositories(db, nil)
	require.NotNil(t, repos.Session)
	return NewSessionRepository(db, nil)
}

func TestCartRoundTripKeepsDecimalsAndCoupon(t *testing.T) {
	repo := newTestRepositories(t)
	ctx := context.Background()

	cart := domain.Cart{
		Items: []domain.CartLineItem{
			{ProductID: "p1", Name: "Mug", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2, StockLimit: 5},
		},
		SubTotal: decimal.RequireFromString("39.98"),
		Coupon:   domain.AppliedCoupon{Code: "SAVE20", DiscountAmount: decimal.NewFromInt(20), IsValid: true, State: domain.CouponStateValid},
		ShippingInfo: &domain.ShippingInfo{
			Address: "1 Main St", City: "Pune", State: "MH", Country: "IN", PinCode: "411001",
		},
	}
	require.NoError(t, repo.SaveCart(ctx, "u1", cart))

	got, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "SAVE20", got.Coupon.Code)
	assert.Equal(t, domain.CouponStateValid, got.Coupon.State)
	require.NotNil(t, got.ShippingInfo)
	assert.Equal(t, "Pune", got.ShippingInfo.City)

	cart.Items[0].Quantity = 3
	require.NoError(t, repo.SaveCart(ctx, "u1", cart), "second save upserts")
	got, err = repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestMissingStateIsNotFound(t *testing.T) {
	repo := newTestRepositories(t)
	ctx := context.Background()

	_, err := repo.GetCart(ctx, "nobody")
	assert.True(t, errors.IsNotFound(err))
	_, err = repo.GetWishlist(ctx, "nobody")
	assert.True(t, errors.IsNotFound(err))
	_, err = repo.GetProfile(ctx, "nobody")
	assert.True(t, errors.IsNotFound(err))
}

func TestWishlistAndProfileAreScopedPerUser(t *testing.T) {
	repo := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveWishlist(ctx, "u1", []string{"p1", "p2"}))
	require.NoError(t, repo.SaveWishlist(ctx, "u2", nil))
	require.NoError(t, repo.SaveProfile(ctx, "u1", domain.UserProfile{ID: "u1", Name: "Asha", Email: "asha@example.com"}))

	ids, err := repo.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	ids, err = repo.GetWishlist(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, ids)

	profile, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
}

func TestClearRemovesOnlyThatUser(t *testing.T) {
	repo := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveWishlist(ctx, "u1", []string{"p1"}))
	require.NoError(t, repo.SaveCart(ctx, "u1", domain.Cart{}))
	require.NoError(t, repo.SaveWishlist(ctx, "u2", []string{"p9"}))

	require.NoError(t, repo.Clear(ctx, "u1"))

	_, err := repo.GetCart(ctx, "u1")
	assert.True(t, errors.IsNotFound(err))
	_, err = repo.GetWishlist(ctx, "u1")
	assert.True(t, errors.IsNotFound(err))

	ids, err := repo.GetWishlist(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, ids)
}

func TestNewConnectionRejectsUnknownDriver(t *testing.T) {
	_, err := NewConnection(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
}
