package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

func testPolicy() pricing.StaticPolicy {
	return pricing.StaticPolicy{
		TaxPercent:            decimal.NewFromInt(5),
		ShippingFlatFee:       decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(500),
	}
}

func newTestManager(t *testing.T, backend *fakeBackend, repo *memRepo) *Manager {
	t.Helper()
	m := NewManager(Options{
		Backend:        backend,
		Repo:           repo,
		Policy:         testPolicy(),
		CouponDebounce: 5 * time.Millisecond,
		PageLimit:      5,
	})
	return m
}

func item(id string, price int64, qty, stock int) domain.CartLineItem {
	return domain.CartLineItem{ProductID: id, Name: "Product " + id, UnitPrice: decimal.NewFromInt(price), Quantity: qty, StockLimit: stock}
}

func shipping() domain.ShippingInfo {
	return domain.ShippingInfo{Address: "1 Main St", City: "Pune", State: "MH", Country: "IN", PinCode: "411001"}
}

func TestCouponFlowsIntoCartAndIsPersisted(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := newFakeBackend()
	backend.coupons["SAVE20"] = decimal.NewFromInt(20)
	repo := newMemRepo()
	m := newTestManager(t, backend, repo)
	defer m.Close()

	s, err := m.Open(gateway.WithToken(context.Background(), "jwt-u1"), "u1")
	require.NoError(t, err)
	require.NoError(t, s.Cart().AddOrUpdateItem(item("p1", 1000, 1, 3)))
	assert.Equal(t, "1050", s.Cart().Snapshot().Total.String())

	s.EnterCoupon("save2")
	s.EnterCoupon("save20")

	require.Eventually(t, func() bool {
		return s.Cart().Snapshot().Total.Equal(decimal.NewFromInt(1030))
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		c, ok := repo.savedCart("u1")
		return ok && c.Coupon.State == domain.CouponStateValid && c.Total.Equal(decimal.NewFromInt(1030))
	}, time.Second, time.Millisecond)

	backend.mu.Lock()
	assert.Equal(t, []string{"jwt-u1"}, backend.tokens, "one validation with the user's token")
	backend.mu.Unlock()
}

func TestRestoredCouponIsRevalidated(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := newFakeBackend()
	repo := newMemRepo()
	require.NoError(t, repo.SaveCart(context.Background(), "u1", domain.Cart{
		Items:  []domain.CartLineItem{item("p1", 1000, 1, 3)},
		Coupon: domain.AppliedCoupon{Code: "EXPIRED", DiscountAmount: decimal.NewFromInt(20), IsValid: true, State: domain.CouponStateValid},
	}))
	require.NoError(t, repo.SaveWishlist(context.Background(), "u1", []string{"p7", "p7", "p8"}))
	m := newTestManager(t, backend, repo)
	defer m.Close()

	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p7", "p8"}, s.Wishlist())

	require.Eventually(t, func() bool {
		return s.Coupon().State().State == domain.CouponStateInvalid
	}, time.Second, time.Millisecond)
	assert.True(t, s.Cart().Snapshot().Discount.IsZero())
	assert.Equal(t, "1050", s.Cart().Snapshot().Total.String())

	notices := s.Notices().List()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0].Message, "EXPIRED")
}

func TestOpenReturnsSameSession(t *testing.T) {
	m := newTestManager(t, newFakeBackend(), newMemRepo())
	defer m.Close()

	a, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)
	b, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())

	_, err = m.Open(context.Background(), "")
	assert.True(t, errors.IsUnauthorized(err))
}

func TestSlowRestoreDoesNotBlockOtherUsers(t *testing.T) {
	defer goleak.VerifyNone(t)
	repo := newSlowRepo("slow")
	m := NewManager(Options{Backend: newFakeBackend(), Repo: repo, Policy: testPolicy(), CouponDebounce: 5 * time.Millisecond})
	defer m.Close()

	opened := make(chan *Session, 1)
	go func() {
		s, _ := m.Open(context.Background(), "slow")
		opened <- s
	}()
	<-repo.entered

	fast, err := m.Open(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", fast.UserID())
	assert.Equal(t, 1, m.Len())

	close(repo.release)
	slow := <-opened
	require.NotNil(t, slow)
	assert.Equal(t, 2, m.Len())
}

func TestConcurrentOpenForSameUserSharesSession(t *testing.T) {
	defer goleak.VerifyNone(t)
	repo := newSlowRepo("u1")
	m := NewManager(Options{Backend: newFakeBackend(), Repo: repo, Policy: testPolicy(), CouponDebounce: 5 * time.Millisecond})
	defer m.Close()

	opened := make(chan *Session, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s, _ := m.Open(context.Background(), "u1")
			opened <- s
		}()
	}
	<-repo.entered
	<-repo.entered
	close(repo.release)

	a, b := <-opened, <-opened
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())
}

func TestReviewInsertRollsBackWhenServerFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := newFakeBackend()
	backend.pages[domain.ResourceReviews] = map[int][]interface{}{
		1: {
			domain.Review{ID: "r1", ProductID: "p1", Rating: 4, Comment: "nice"},
			domain.Review{ID: "r2", ProductID: "p1", Rating: 5, Comment: "great"},
		},
	}
	m := newTestManager(t, backend, newMemRepo())
	defer m.Close()
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)

	reviews := s.Reviews("p1")
	_, err = reviews.LoadNextPage(context.Background())
	require.NoError(t, err)
	before := reviews.State().Items
	require.Len(t, before, 2)
	assert.Equal(t, "p1", reviews.Filter().ProductID)

	backend.setMutateErr(&errors.ErrTransient{Op: "create reviews", StatusCode: 500})
	mut, err := s.CreateReview(context.Background(), "p1", 5, "love it")
	require.Error(t, err)
	assert.Equal(t, domain.MutationStateRolledBack, mut.State())
	assert.Equal(t, before, reviews.State().Items)

	notices := s.Notices().Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, collection.NoticeError, notices[0].Level)
	assert.Empty(t, s.Notices().List())
}

func TestReviewCreateConfirmed(t *testing.T) {
	backend := newFakeBackend()
	backend.record = domain.Review{ID: "r9", ProductID: "p1", Rating: 5, Comment: "love it"}
	m := newTestManager(t, backend, newMemRepo())
	defer m.Close()
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)

	mut, err := s.CreateReview(context.Background(), "p1", 5, " love it ")
	require.NoError(t, err)
	assert.Equal(t, domain.MutationStateConfirmed, mut.State())

	items := s.Reviews("p1").State().Items
	require.Len(t, items, 1)
	assert.Equal(t, "r9", items[0].ID)
	assert.False(t, items[0].Pending)

	log := backend.mutationLog()
	require.Len(t, log, 1)
	assert.Equal(t, domain.ResourceReviews, log[0].Resource)
	assert.Equal(t, reviewPayload{ProductID: "p1", Rating: 5, Comment: "love it"}, log[0].Payload)

	_, err = s.CreateReview(context.Background(), "p1", 9, "")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")
	assert.Contains(t, verr.Fields, "comment")
}

func TestWishlistToggleRevertsOnFailure(t *testing.T) {
	backend := newFakeBackend()
	repo := newMemRepo()
	m := newTestManager(t, backend, repo)
	defer m.Close()
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)
	ctx := context.Background()

	added, err := s.ToggleWishlist(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.InWishlist("p1"))

	backend.setMutateErr(&errors.ErrTransient{Op: "delete wishlist", StatusCode: 503})
	inList, err := s.ToggleWishlist(ctx, "p1")
	require.Error(t, err)
	assert.True(t, inList)
	assert.Equal(t, []string{"p1"}, s.Wishlist())
	ids, err := repo.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
	assert.Len(t, s.Notices().List(), 1)

	backend.setMutateErr(nil)
	added, err = s.ToggleWishlist(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, s.Wishlist())

	log := backend.mutationLog()
	require.Len(t, log, 3)
	assert.Equal(t, domain.OperationCreate, log[0].Operation)
	assert.Equal(t, domain.OperationDelete, log[2].Operation)
	assert.Equal(t, "p1", log[2].ID)
}

func TestPlaceOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := newFakeBackend()
	backend.coupons["SAVE20"] = decimal.NewFromInt(20)
	backend.record = domain.Order{ID: "o1", Total: decimal.NewFromInt(1030), Status: domain.OrderStatusProcessing}
	repo := newMemRepo()
	m := newTestManager(t, backend, repo)
	defer m.Close()
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)

	_, err = s.PlaceOrder(context.Background())
	assert.True(t, errors.IsValidation(err), "empty cart")

	require.NoError(t, s.Cart().AddOrUpdateItem(item("p1", 1000, 1, 3)))
	_, err = s.PlaceOrder(context.Background())
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shippingInfo")

	require.NoError(t, s.Cart().SetShippingInfo(shipping()))
	s.EnterCoupon("SAVE20")
	require.Eventually(t, func() bool { return s.Coupon().State().IsValid }, time.Second, time.Millisecond)

	order, err := s.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	log := backend.mutationLog()
	require.Len(t, log, 1)
	assert.Equal(t, domain.ResourceOrders, log[0].Resource)
	req, ok := log[0].Payload.(*OrderRequest)
	require.True(t, ok)
	assert.Equal(t, "SAVE20", req.CouponCode)
	assert.Equal(t, "1030", req.Total.String())
	assert.Equal(t, "50", req.Tax.String())
	assert.Len(t, req.Items, 1)

	snap := s.Cart().Snapshot()
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.ShippingInfo)
	assert.Equal(t, domain.CouponStateEmpty, s.Coupon().State().State)
}

func TestPendingCouponDoesNotBlockCheckout(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := newFakeBackend()
	m := NewManager(Options{Backend: backend, Repo: newMemRepo(), Policy: testPolicy(), CouponDebounce: time.Hour})
	defer m.Close()
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, s.Cart().AddOrUpdateItem(item("p1", 100, 2, 3)))
	require.NoError(t, s.Cart().SetShippingInfo(shipping()))
	s.EnterCoupon("LATER")

	_, err = s.PlaceOrder(context.Background())
	require.NoError(t, err)
	req := backend.mutationLog()[0].Payload.(*OrderRequest)
	assert.Empty(t, req.CouponCode)
	assert.True(t, req.Discount.IsZero())
}

func TestLogoutForgetsPersistedState(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemRepo()
	m := newTestManager(t, newFakeBackend(), repo)
	defer m.Close()
	ctx := context.Background()

	s, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, s.Cart().AddOrUpdateItem(item("p1", 100, 1, 3)))
	require.NoError(t, s.SetProfile(ctx, domain.UserProfile{ID: "u1", Name: "Asha"}))

	require.NoError(t, m.Logout(ctx, "u1"))
	assert.Equal(t, 0, m.Len())
	_, ok := repo.savedCart("u1")
	assert.False(t, ok)
	_, err = repo.GetProfile(ctx, "u1")
	assert.True(t, errors.IsNotFound(err))

	fresh, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	assert.NotSame(t, s, fresh)
	assert.Equal(t, 0, fresh.Cart().ItemCount())
}

func TestCloseFlushesCart(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemRepo()
	m := NewManager(Options{Backend: newFakeBackend(), Repo: repo, Policy: testPolicy()})
	s, err := m.Open(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, s.Cart().AddOrUpdateItem(item("p1", 100, 2, 3)))

	m.Close()
	c, ok := repo.savedCart("u1")
	require.True(t, ok)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	_, err = m.Open(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNoticeBoardIsBounded(t *testing.T) {
	b := NewNoticeBoard(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		b.Notify(collection.Notice{Message: msg})
	}
	list := b.List()
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].Message)
	assert.Equal(t, "d", list[2].Message)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, collection.NoticeInfo, list[0].Level)
}
