package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/cart"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/coupon"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/repository"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Backend is the remote storefront API. *gateway.Client implements it.
type Backend interface {
	gateway.PageSource
	Mutate(ctx context.Context, req gateway.MutationRequest) (*gateway.MutationResponse, error)
	ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error)
}

// Options configures the sessions created by a Manager
type Options struct {
	Backend        Backend
	Repo           repository.SessionRepository
	Policy         pricing.PolicyProvider
	CouponDebounce time.Duration
	PageLimit      int
	Logger         *zap.Logger
}

// Session is the client-side state of one logged-in user
type Session struct {
	userID  string
	backend Backend
	repo    repository.SessionRepository
	limit   int
	logger  *zap.Logger

	cart    *cart.Engine
	coupon  *coupon.Reconciler
	persist *cartPersister
	notices *NoticeBoard

	orders *collection.Synchronizer[domain.Order]
	search *collection.Synchronizer[domain.Product]

	mu       sync.Mutex
	token    string
	reviews  map[string]*collection.Optimistic[domain.Review]
	wishlist []string
	profile  *domain.UserProfile
	closed   bool
}

func newSession(userID string, opts Options) *Session {
	logger := opts.Logger.With(zap.String("user_id", userID))
	s := &Session{
		userID:  userID,
		backend: opts.Backend,
		repo:    opts.Repo,
		limit:   opts.PageLimit,
		logger:  logger,
		notices: NewNoticeBoard(DefaultNoticeCapacity),
		reviews: map[string]*collection.Optimistic[domain.Review]{},
	}
	s.cart = cart.NewEngine(opts.Policy, logger)
	s.coupon = coupon.NewReconciler(couponValidator{s}, opts.CouponDebounce, logger)
	s.orders = collection.NewSynchronizer("orders",
		withNotice(s.notices, "orders", gateway.Fetcher[domain.Order](s, domain.ResourceOrders)),
		func(o domain.Order) string { return o.ID }, s.limit, logger)
	s.search = collection.NewSynchronizer("search",
		withNotice(s.notices, "products", gateway.Fetcher[domain.Product](s, domain.ResourceProducts)),
		func(p domain.Product) string { return p.ID }, s.limit, logger)
	return s
}

// wire connects reconciler -> engine -> persistence. Called after restore so restoring does
// not write back what was just read.
func (s *Session) wire() {
	s.persist = newCartPersister(func(ctx context.Context, c domain.Cart) error {
		return s.repo.SaveCart(ctx, s.userID, c)
	}, s.logger)
	s.cart.OnChange(s.persist.offer)
	s.coupon.OnChange(func(c domain.AppliedCoupon) {
		s.cart.ApplyCoupon(c)
		if c.State == domain.CouponStateInvalid {
			s.notices.Error("Coupon " + c.Code + " is not valid")
		}
	})
}

// UserID returns the owner of the session
func (s *Session) UserID() string { return s.userID }

// Cart returns the cart engine
func (s *Session) Cart() *cart.Engine { return s.cart }

// Coupon returns the coupon reconciler
func (s *Session) Coupon() *coupon.Reconciler { return s.coupon }

// Notices returns the notice board
func (s *Session) Notices() *NoticeBoard { return s.notices }

// Orders is the paginated order history of the user
func (s *Session) Orders() *collection.Synchronizer[domain.Order] { return s.orders }

// Search is the paginated product search
func (s *Session) Search() *collection.Synchronizer[domain.Product] { return s.search }

// EnterCoupon forwards an edit of the coupon field
func (s *Session) EnterCoupon(code string) {
	s.coupon.Enter(code)
}

// ResetCart empties the cart and drops the coupon
func (s *Session) ResetCart() {
	s.cart.Reset()
	s.coupon.Clear()
}

// SetToken records the bearer token of the latest request. Background work such as coupon
// validation uses it when talking to the backend.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Profile returns the cached user profile, if any
func (s *Session) Profile() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SetProfile caches and persists the user profile
func (s *Session) SetProfile(ctx context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return s.repo.SaveProfile(ctx, s.userID, profile)
}

// Close stops background work and writes the last cart snapshot
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.coupon.Close()
	if s.persist != nil {
		s.persist.close()
	}
}

// FetchPage implements gateway.PageSource with the session's bearer token attached
func (s *Session) FetchPage(ctx context.Context, resource domain.Resource, filter collection.Filter, page, limit int) (*gateway.PageResponse, error) {
	return s.backend.FetchPage(s.withToken(ctx), resource, filter, page, limit)
}

func (s *Session) mutate(ctx context.Context, req gateway.MutationRequest) (*gateway.MutationResponse, error) {
	return s.backend.Mutate(s.withToken(ctx), req)
}

// withToken attaches the stored token unless the caller already carries one
func (s *Session) withToken(ctx context.Context) context.Context {
	if _, ok := gateway.TokenFromContext(ctx); ok {
		return ctx
	}
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return ctx
	}
	return gateway.WithToken(ctx, token)
}

// withNotice publishes a notice when a page fetch fails
func withNotice[T any](board *NoticeBoard, name string, fetch collection.FetchFunc[T]) collection.FetchFunc[T] {
	return func(ctx context.Context, filter collection.Filter, page, limit int) (collection.Page[T], error) {
		out, err := fetch(ctx, filter, page, limit)
		if err != nil && !isCancellation(err) {
			board.Error("Could not load " + name + ", please retry")
		}
		return out, err
	}
}

type couponValidator struct {
	s *Session
}

func (v couponValidator) ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error) {
	return v.s.backend.ValidateCoupon(v.s.withToken(ctx), code)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
