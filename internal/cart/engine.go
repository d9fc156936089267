package cart

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Engine owns a single cart and keeps its derived money fields consistent with the line
// items and the applied coupon.
type Engine struct {
	mu       sync.Mutex
	cart     domain.Cart
	policy   pricing.PolicyProvider
	logger   *zap.Logger
	onChange func(domain.Cart)
}

// NewEngine creates an engine with an empty cart
func NewEngine(policy pricing.PolicyProvider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		cart:   domain.Cart{Coupon: domain.EmptyCoupon()},
		policy: policy,
		logger: logger,
	}
	e.recomputeLocked()
	return e
}

// OnChange registers a hook called with a snapshot after every mutation.
// The hook runs while the engine lock is held and must not call back into the engine.
func (e *Engine) OnChange(fn func(domain.Cart)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// AddOrUpdateItem inserts a line item or replaces the existing line with the same product.
// The quantity is replaced, not added, and clamped to [1, stockLimit].
func (e *Engine) AddOrUpdateItem(item domain.CartLineItem) error {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if err := validateItem(item); err != nil {
		return err
	}
	item.Quantity = clamp(item.Quantity, 1, item.StockLimit)

	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.indexLocked(item.ProductID); idx >= 0 {
		e.cart.Items[idx] = item
		e.logger.Debug("Cart item replaced", zap.String("product_id", item.ProductID), zap.Int("quantity", item.Quantity))
	} else {
		e.cart.Items = append(e.cart.Items, item)
		e.logger.Debug("Cart item added", zap.String("product_id", item.ProductID), zap.Int("quantity", item.Quantity))
	}
	e.commitLocked()
	return nil
}

// IncrementQuantity adds one unit unless the stock limit is reached. Reports whether the cart changed.
func (e *Engine) IncrementQuantity(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(productID)
	if idx < 0 || e.cart.Items[idx].Quantity >= e.cart.Items[idx].StockLimit {
		return false
	}
	e.cart.Items[idx].Quantity++
	e.commitLocked()
	return true
}

// DecrementQuantity removes one unit unless quantity is already 1. Reports whether the cart changed.
func (e *Engine) DecrementQuantity(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(productID)
	if idx < 0 || e.cart.Items[idx].Quantity <= 1 {
		return false
	}
	e.cart.Items[idx].Quantity--
	e.commitLocked()
	return true
}

// CanIncrement reports whether the increment control should be enabled
func (e *Engine) CanIncrement(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexLocked(productID)
	return idx >= 0 && e.cart.Items[idx].Quantity < e.cart.Items[idx].StockLimit
}

// CanDecrement reports whether the decrement control should be enabled
func (e *Engine) CanDecrement(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexLocked(productID)
	return idx >= 0 && e.cart.Items[idx].Quantity > 1
}

// RemoveItem deletes the line item. Reports whether it was present.
func (e *Engine) RemoveItem(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(productID)
	if idx < 0 {
		return false
	}
	e.cart.Items = append(e.cart.Items[:idx], e.cart.Items[idx+1:]...)
	e.commitLocked()
	return true
}

// Reset clears items, derived fields, coupon and shipping info
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart = domain.Cart{Coupon: domain.EmptyCoupon()}
	e.commitLocked()
}

// ApplyCoupon stores the coupon state pushed by the reconciler and re-derives the totals
func (e *Engine) ApplyCoupon(coupon domain.AppliedCoupon) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart.Coupon = coupon
	e.commitLocked()
}

// SetShippingInfo validates and stores the shipping address for the current checkout
func (e *Engine) SetShippingInfo(info domain.ShippingInfo) error {
	info = normalizeShippingInfo(info)
	if err := validateShippingInfo(info); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart.ShippingInfo = &info
	e.commitLocked()
	return nil
}

// Recompute re-derives and returns the totals. Calling it repeatedly without a mutation
// in between yields identical results.
func (e *Engine) Recompute() pricing.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked()
}

// Snapshot returns a deep copy of the cart
func (e *Engine) Snapshot() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone()
}

// ItemCount is the number of distinct line items
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cart.Items)
}

// Restore replaces the cart with a persisted snapshot. Line items violating the bounds are
// clamped or dropped, duplicates keep their first occurrence, and totals are re-derived.
// The change hook is not fired.
func (e *Engine) Restore(snapshot domain.Cart) {
	restored := domain.Cart{Coupon: snapshot.Coupon, ShippingInfo: snapshot.Clone().ShippingInfo}
	if !restored.Coupon.State.IsValid() {
		restored.Coupon = domain.EmptyCoupon()
	}
	seen := make(map[string]struct{}, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if validateItem(item) != nil {
			e.logger.Warn("Dropping invalid persisted cart item", zap.String("product_id", item.ProductID))
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		item.Quantity = clamp(item.Quantity, 1, item.StockLimit)
		restored.Items = append(restored.Items, item)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = restored
	e.recomputeLocked()
}

func (e *Engine) indexLocked(productID string) int {
	for i := range e.cart.Items {
		if e.cart.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) recomputeLocked() pricing.Totals {
	totals := pricing.Compute(e.cart.Items, e.cart.Coupon, e.policy.Policy())
	e.cart.SubTotal = totals.SubTotal
	e.cart.Tax = totals.Tax
	e.cart.ShippingCharges = totals.ShippingCharges
	e.cart.Discount = totals.Discount
	e.cart.Total = totals.Total
	return totals
}

// commitLocked re-derives totals and notifies the change hook
func (e *Engine) commitLocked() {
	e.recomputeLocked()
	if e.onChange != nil {
		e.onChange(e.cart.Clone())
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validateItem(item domain.CartLineItem) error {
	fields := map[string]string{}
	if item.ProductID == "" {
		fields["productId"] = "required"
	}
	if item.UnitPrice.IsNegative() {
		fields["unitPrice"] = "must not be negative"
	}
	if item.StockLimit < 1 {
		fields["stockLimit"] = "product is out of stock"
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "invalid cart item", Fields: fields}
	}
	return nil
}

func normalizeShippingInfo(info domain.ShippingInfo) domain.ShippingInfo {
	info.Address = strings.TrimSpace(info.Address)
	info.City = strings.TrimSpace(info.City)
	info.State = strings.TrimSpace(info.State)
	info.Country = strings.TrimSpace(info.Country)
	info.PinCode = strings.TrimSpace(info.PinCode)
	return info
}

func validateShippingInfo(info domain.ShippingInfo) error {
	fields := map[string]string{}
	if info.Address == "" {
		fields["address"] = "required"
	}
	if info.City == "" {
		fields["city"] = "required"
	}
	if info.State == "" {
		fields["state"] = "required"
	}
	if info.Country == "" {
		fields["country"] = "required"
	}
	if info.PinCode == "" {
		fields["pinCode"] = "required"
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "shipping info incomplete", Fields: fields}
	}
	return nil
}
