package coupon

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// DefaultDebounce is the quiet period after the last keystroke before a code is validated
const DefaultDebounce = time.Second

// Validator checks a coupon code against the backend.
// A *errors.ErrInvalidCoupon marks the code as invalid; any other error is treated as transient.
type Validator interface {
	ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error)
}

// Reconciler drives the coupon field state machine:
// Empty -> Pending(code) -> Valid(code, amount) | Invalid(code).
//
// Every edit bumps a generation id; a validation result is applied only if its generation
// still matches, so a late answer for a superseded code never overwrites newer state.
type Reconciler struct {
	mu         sync.Mutex
	validator  Validator
	delay      time.Duration
	logger     *zap.Logger
	state      domain.AppliedCoupon
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	inflight   sync.WaitGroup
	closed     bool
	onChange   func(domain.AppliedCoupon)
}

// NewReconciler creates a reconciler in the Empty state
func NewReconciler(validator Validator, delay time.Duration, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Reconciler{
		validator: validator,
		delay:     delay,
		logger:    logger,
		state:     domain.EmptyCoupon(),
	}
}

// OnChange registers a hook receiving every state transition.
// The hook runs under the reconciler lock and must not call back into the reconciler.
func (r *Reconciler) OnChange(fn func(domain.AppliedCoupon)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// State returns the current coupon state
func (r *Reconciler) State() domain.AppliedCoupon {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Enter handles an edit of the coupon field. The discount is dropped synchronously;
// an empty code goes straight to Empty, anything else waits for the debounce.
func (r *Reconciler) Enter(code string) {
	code = Normalize(code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.supersedeLocked()
	if code == "" {
		r.setLocked(domain.EmptyCoupon())
		return
	}

	r.setLocked(domain.AppliedCoupon{Code: code, DiscountAmount: decimal.Zero, State: domain.CouponStatePending})
	gen := r.generation
	r.timer = time.AfterFunc(r.delay, func() { r.validate(gen, code) })
}

// Revalidate re-checks the current code immediately, keeping the current state until the
// backend answers. Used for a coupon restored from storage.
func (r *Reconciler) Revalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.state.Code == "" {
		return
	}

	r.supersedeLocked()
	gen := r.generation
	code := r.state.Code
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.run(gen, code)
	}()
}

// Restore sets a persisted state without notifying or validating
func (r *Reconciler) Restore(state domain.AppliedCoupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supersedeLocked()
	if !state.State.IsValid() || state.Code == "" {
		state = domain.EmptyCoupon()
	}
	r.state = state
}

// Clear drops the coupon (cart reset)
func (r *Reconciler) Clear() {
	r.Enter("")
}

// Close stops the debounce timer and cancels any in-flight validation, then waits for
// validation goroutines to return.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.supersedeLocked()
	r.mu.Unlock()

	r.inflight.Wait()
}

// Normalize trims and upper-cases a coupon code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// supersedeLocked invalidates any pending timer or in-flight request
func (r *Reconciler) supersedeLocked() {
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// validate is the debounce timer callback
func (r *Reconciler) validate(gen uint64, code string) {
	r.mu.Lock()
	if r.closed || gen != r.generation {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.inflight.Add(1)
	r.mu.Unlock()

	defer r.inflight.Done()
	r.run(gen, code)
}

func (r *Reconciler) run(gen uint64, code string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		return
	}
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Debug("Validating coupon", zap.String("code", code))
	amount, err := r.validator.ValidateCoupon(ctx, code)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Superseded or cancelled while waiting: discard whatever came back
	if gen != r.generation || ctx.Err() != nil {
		r.logger.Debug("Discarding stale coupon validation", zap.String("code", code))
		return
	}
	r.cancel = nil

	switch {
	case err == nil:
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		r.setLocked(domain.AppliedCoupon{Code: code, DiscountAmount: amount, IsValid: true, State: domain.CouponStateValid})
	case errors.IsInvalidCoupon(err):
		r.setLocked(domain.AppliedCoupon{Code: code, DiscountAmount: decimal.Zero, State: domain.CouponStateInvalid})
	default:
		r.logger.Warn("Coupon validation failed, keeping previous state",
			zap.String("code", code),
			zap.String("state", string(r.state.State)),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) setLocked(state domain.AppliedCoupon) {
	r.state = state
	r.logger.Debug("Coupon state changed", zap.String("code", state.Code), zap.String("state", string(state.State)))
	if r.onChange != nil {
		r.onChange(state)
	}
}
