package coupon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

type fakeValidator struct {
	mu      sync.Mutex
	calls   []string
	answers map[string]decimal.Decimal
	errs    map[string]error
	block   map[string]chan struct{}
	started chan string
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{
		answers: map[string]decimal.Decimal{},
		errs:    map[string]error{},
		block:   map[string]chan struct{}{},
		started: make(chan string, 16),
	}
}

func (f *fakeValidator) ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	release := f.block[code]
	amount, err := f.answers[code], f.errs[code]
	f.mu.Unlock()

	f.started <- code
	if release != nil {
		// Answers even after cancellation, like a response already on the wire
		<-release
	}
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsZero() {
		return decimal.Zero, &errors.ErrInvalidCoupon{Code: code}
	}
	return amount, nil
}

func (f *fakeValidator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func waitState(t *testing.T, r *Reconciler, want domain.CouponState) {
	t.Helper()
	require.Eventually(t, func() bool { return r.State().State == want }, 2*time.Second, 5*time.Millisecond)
}

func TestDebounceIssuesSingleValidation(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	v.answers["SAVE20"] = decimal.NewFromInt(20)
	r := NewReconciler(v, 40*time.Millisecond, nil)
	defer r.Close()

	r.Enter("SAVE2")
	r.Enter("save20")

	waitState(t, r, domain.CouponStateValid)
	assert.Equal(t, []string{"SAVE20"}, v.Calls())

	state := r.State()
	assert.Equal(t, "SAVE20", state.Code)
	assert.True(t, state.IsValid)
	assert.True(t, state.DiscountAmount.Equal(decimal.NewFromInt(20)))
}

func TestEditDropsDiscountSynchronously(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	v.answers["SAVE20"] = decimal.NewFromInt(20)
	r := NewReconciler(v, 5*time.Millisecond, nil)
	defer r.Close()

	r.Enter("SAVE20")
	waitState(t, r, domain.CouponStateValid)

	r.Enter("SAVE2")
	state := r.State()
	assert.Equal(t, domain.CouponStatePending, state.State)
	assert.False(t, state.IsValid)
	assert.True(t, state.DiscountAmount.IsZero())
}

func TestClearingCodeIsSynchronous(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	v.answers["SAVE20"] = decimal.NewFromInt(20)
	r := NewReconciler(v, 5*time.Millisecond, nil)
	defer r.Close()

	var pushed []domain.AppliedCoupon
	var mu sync.Mutex
	r.OnChange(func(c domain.AppliedCoupon) {
		mu.Lock()
		pushed = append(pushed, c)
		mu.Unlock()
	})

	r.Enter("SAVE20")
	waitState(t, r, domain.CouponStateValid)

	r.Enter("   ")
	state := r.State()
	assert.Equal(t, domain.CouponStateEmpty, state.State)
	assert.False(t, state.IsValid)
	assert.True(t, state.DiscountAmount.IsZero())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, pushed)
	assert.Equal(t, domain.CouponStateEmpty, pushed[len(pushed)-1].State)
}

func TestInvalidCode(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	r := NewReconciler(v, 5*time.Millisecond, nil)
	defer r.Close()

	r.Enter("bogus")
	waitState(t, r, domain.CouponStateInvalid)

	state := r.State()
	assert.Equal(t, "BOGUS", state.Code)
	assert.True(t, state.DiscountAmount.IsZero())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	v.answers["OLD"] = decimal.NewFromInt(50)
	v.answers["NEW"] = decimal.NewFromInt(10)
	release := make(chan struct{})
	v.block["OLD"] = release
	r := NewReconciler(v, time.Millisecond, nil)
	defer r.Close()

	r.Enter("old")
	assert.Equal(t, "OLD", <-v.started)

	r.Enter("new")
	close(release)

	waitState(t, r, domain.CouponStateValid)
	state := r.State()
	assert.Equal(t, "NEW", state.Code)
	assert.True(t, state.DiscountAmount.Equal(decimal.NewFromInt(10)))
}

func TestTransientFailureKeepsState(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	v.errs["SAVE20"] = &errors.ErrTransient{Op: "validate coupon", StatusCode: 503}
	r := NewReconciler(v, time.Millisecond, nil)
	defer r.Close()

	r.Restore(domain.AppliedCoupon{Code: "SAVE20", DiscountAmount: decimal.NewFromInt(20), IsValid: true, State: domain.CouponStateValid})
	r.Revalidate()
	assert.Equal(t, "SAVE20", <-v.started)

	// Give the goroutine time to apply (or not) the result
	require.Never(t, func() bool { return r.State().State != domain.CouponStateValid }, 50*time.Millisecond, 5*time.Millisecond)
	assert.True(t, r.State().DiscountAmount.Equal(decimal.NewFromInt(20)))
}

func TestRevalidateInvalidatesRejectedCode(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	r := NewReconciler(v, time.Millisecond, nil)
	defer r.Close()

	r.Restore(domain.AppliedCoupon{Code: "EXPIRED", DiscountAmount: decimal.NewFromInt(20), IsValid: true, State: domain.CouponStateValid})
	r.Revalidate()

	waitState(t, r, domain.CouponStateInvalid)
	assert.True(t, r.State().DiscountAmount.IsZero())
}

func TestCloseStopsPendingTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := newFakeValidator()
	r := NewReconciler(v, 20*time.Millisecond, nil)

	r.Enter("LATER")
	r.Close()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, v.Calls())

	r.Enter("IGNORED")
	assert.Equal(t, "LATER", r.State().Code)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SAVE20", Normalize("  save20 "))
	assert.Equal(t, "", Normalize("   "))
}
