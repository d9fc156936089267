package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/coupon"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Manager owns one Session per user
type Manager struct {
	mu       sync.Mutex
	opts     Options
	sessions map[string]*Session
	closed   bool
	logger   *zap.Logger
}

// NewManager creates a session manager
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == nil {
		opts.Policy = pricing.StaticPolicy{}
	}
	if opts.CouponDebounce <= 0 {
		opts.CouponDebounce = coupon.DefaultDebounce
	}
	return &Manager{
		opts:     opts,
		sessions: map[string]*Session{},
		logger:   opts.Logger,
	}
}

// Open returns the user's session, creating it and restoring persisted state on first use.
// A bearer token on ctx (gateway.WithToken) becomes the session's backend credential.
// Persisted state is read without holding the manager lock; when two opens for the same
// user race, the first one to finish wins and the other copy is discarded.
func (m *Manager) Open(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, &errors.ErrUnauthorized{Message: "missing user identity"}
	}
	token, _ := gateway.TokenFromContext(ctx)

	if s, ok, err := m.lookup(userID, token); ok || err != nil {
		return s, err
	}

	s := newSession(userID, m.opts)
	s.token = token
	if err := m.restore(ctx, s); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		s.Close()
		return nil, &errors.ErrTransient{Op: "open session", Err: context.Canceled}
	}
	if existing, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		s.Close()
		if token != "" {
			existing.SetToken(token)
		}
		return existing, nil
	}
	s.wire()
	m.sessions[userID] = s
	m.mu.Unlock()

	if c := s.coupon.State(); c.Code != "" {
		s.coupon.Revalidate()
	}
	m.logger.Info("Session opened", zap.String("user_id", userID), zap.Int("cart_items", s.cart.ItemCount()))
	return s, nil
}

func (m *Manager) lookup(userID, token string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, &errors.ErrTransient{Op: "open session", Err: context.Canceled}
	}
	s, ok := m.sessions[userID]
	if ok && token != "" {
		s.SetToken(token)
	}
	return s, ok, nil
}

func (m *Manager) restore(ctx context.Context, s *Session) error {
	saved, err := m.opts.Repo.GetCart(ctx, s.userID)
	switch {
	case err == nil:
		s.cart.Restore(*saved)
		s.coupon.Restore(saved.Coupon)
	case !errors.IsNotFound(err):
		m.logger.Error("Failed to restore cart", zap.String("user_id", s.userID), zap.Error(err))
		return err
	}

	wishlist, err := m.opts.Repo.GetWishlist(ctx, s.userID)
	switch {
	case err == nil:
		s.wishlist = dedupe(wishlist)
	case !errors.IsNotFound(err):
		m.logger.Error("Failed to restore wishlist", zap.String("user_id", s.userID), zap.Error(err))
		return err
	}

	profile, err := m.opts.Repo.GetProfile(ctx, s.userID)
	switch {
	case err == nil:
		s.profile = profile
	case !errors.IsNotFound(err):
		m.logger.Error("Failed to restore profile", zap.String("user_id", s.userID), zap.Error(err))
		return err
	}
	return nil
}

// Logout tears the session down and forgets everything persisted for the user
func (m *Manager) Logout(ctx context.Context, userID string) error {
	m.mu.Lock()
	s := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if s != nil {
		s.Close()
	}
	if err := m.opts.Repo.Clear(ctx, userID); err != nil {
		m.logger.Error("Failed to clear session state", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	m.logger.Info("Session closed on logout", zap.String("user_id", userID))
	return nil
}

// Close stops every session. Persisted state is kept.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len is the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && indexOf(out, id) < 0 {
			out = append(out, id)
		}
	}
	return out
}

