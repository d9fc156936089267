package domain

// CouponState is the reconciliation state of the coupon code field
type CouponState string

const (
	// EMPTY - no code entered
	CouponStateEmpty CouponState = "EMPTY"
	// PENDING - code entered, waiting for debounce or backend validation
	CouponStatePending CouponState = "PENDING"
	// VALID - backend accepted the code and granted a discount
	CouponStateValid CouponState = "VALID"
	// INVALID - backend rejected the code (400-class)
	CouponStateInvalid CouponState = "INVALID"
)

// IsValid checks if the coupon state is known
func (s CouponState) IsValid() bool {
	switch s {
	case CouponStateEmpty, CouponStatePending, CouponStateValid, CouponStateInvalid:
		return true
	default:
		return false
	}
}

// MutationState tracks a single optimistic mutation
type MutationState string

const (
	MutationStateIdle              MutationState = "IDLE"
	MutationStateOptimisticApplied MutationState = "OPTIMISTIC_APPLIED"
	MutationStateConfirmed         MutationState = "CONFIRMED"
	MutationStateRolledBack        MutationState = "ROLLED_BACK"
)

// CanTransitionTo checks if a mutation state transition is valid
func (s MutationState) CanTransitionTo(next MutationState) bool {
	switch s {
	case MutationStateIdle:
		return next == MutationStateOptimisticApplied
	case MutationStateOptimisticApplied:
		return next == MutationStateConfirmed || next == MutationStateRolledBack
	case MutationStateConfirmed, MutationStateRolledBack:
		return false // Terminal states
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s MutationState) IsTerminal() bool {
	return s == MutationStateConfirmed || s == MutationStateRolledBack
}

// OrderStatus is the storefront order status reported by the backend
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Resource names a collection exposed by the backend REST API
type Resource string

const (
	ResourceOrders      Resource = "orders"
	ResourceAdminOrders Resource = "admin/orders"
	ResourceReviews     Resource = "reviews"
	ResourceProducts    Resource = "products"
	ResourceCoupons     Resource = "coupons"
	ResourceWishlist    Resource = "wishlist"
)

// Operation is a mutation verb understood by the backend
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)
