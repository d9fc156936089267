package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

type fakeBackend struct {
	mu        sync.Mutex
	pages     map[domain.Resource]map[int][]interface{}
	coupons   map[string]decimal.Decimal
	mutateErr error
	record    interface{}
	mutations []gateway.MutationRequest
	tokens    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pages:   map[domain.Resource]map[int][]interface{}{},
		coupons: map[string]decimal.Decimal{},
	}
}

func (f *fakeBackend) FetchPage(ctx context.Context, resource domain.Resource, filter collection.Filter, page, limit int) (*gateway.PageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, _ := gateway.TokenFromContext(ctx)
	f.tokens = append(f.tokens, tok)

	resp := &gateway.PageResponse{Success: true}
	for _, rec := range f.pages[resource][page] {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		resp.Records = append(resp.Records, raw)
	}
	resp.Pagination = &collection.Pagination{CurrentPage: page, TotalPages: len(f.pages[resource])}
	return resp, nil
}

func (f *fakeBackend) Mutate(ctx context.Context, req gateway.MutationRequest) (*gateway.MutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, req)
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	resp := &gateway.MutationResponse{Success: true}
	if f.record != nil {
		raw, err := json.Marshal(f.record)
		if err != nil {
			return nil, err
		}
		resp.Record = raw
	}
	return resp, nil
}

func (f *fakeBackend) ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, _ := gateway.TokenFromContext(ctx)
	f.tokens = append(f.tokens, tok)
	if amount, ok := f.coupons[code]; ok {
		return amount, nil
	}
	return decimal.Zero, &errors.ErrInvalidCoupon{Code: code}
}

func (f *fakeBackend) setMutateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutateErr = err
}

func (f *fakeBackend) mutationLog() []gateway.MutationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.MutationRequest{}, f.mutations...)
}

// memRepo is an in-memory SessionRepository
type memRepo struct {
	mu       sync.Mutex
	carts    map[string]domain.Cart
	wishlist map[string][]string
	profiles map[string]domain.UserProfile
}

func newMemRepo() *memRepo {
	return &memRepo{
		carts:    map[string]domain.Cart{},
		wishlist: map[string][]string{},
		profiles: map[string]domain.UserProfile{},
	}
}

func (r *memRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: userID}
	}
	c = c.Clone()
	return &c, nil
}

func (r *memRepo) SaveCart(_ context.Context, userID string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = cart.Clone()
	return nil
}

func (r *memRepo) GetWishlist(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.wishlist[userID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "wishlist", ID: userID}
	}
	return append([]string{}, ids...), nil
}

func (r *memRepo) SaveWishlist(_ context.Context, userID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wishlist[userID] = append([]string{}, ids...)
	return nil
}

func (r *memRepo) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "profile", ID: userID}
	}
	return &p, nil
}

func (r *memRepo) SaveProfile(_ context.Context, userID string, p domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = p
	return nil
}

func (r *memRepo) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	delete(r.wishlist, userID)
	delete(r.profiles, userID)
	return nil
}

func (r *memRepo) savedCart(userID string) (domain.Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	return c, ok
}

// slowRepo holds GetCart for one user until release is closed
type slowRepo struct {
	*memRepo
	slowUser string
	entered  chan struct{}
	release  chan struct{}
}

func newSlowRepo(user string) *slowRepo {
	return &slowRepo{
		memRepo:  newMemRepo(),
		slowUser: user,
		entered:  make(chan struct{}, 8),
		release:  make(chan struct{}),
	}
}

func (r *slowRepo) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == r.slowUser {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.memRepo.GetCart(ctx, userID)
}
