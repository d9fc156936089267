package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem is one product in the cart. ProductID is unique within a cart.
type CartLineItem struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	StockLimit int             `json:"stockLimit"` // stock snapshot taken when the item was added
	PhotoRef   string          `json:"photoRef,omitempty"`
}

// LineTotal is unitPrice × quantity
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AppliedCoupon is the coupon state held by the cart
type AppliedCoupon struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	IsValid        bool            `json:"isValid"`
	State          CouponState     `json:"state"`
}

// EmptyCoupon returns the zero coupon state
func EmptyCoupon() AppliedCoupon {
	return AppliedCoupon{State: CouponStateEmpty, DiscountAmount: decimal.Zero}
}

// ShippingInfo is captured once per checkout attempt
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	PinCode string `json:"pinCode"`
}

// Cart owns the line items (insertion order = display order) and the derived money fields.
// The derived fields are never written directly, they are re-derived after every change.
type Cart struct {
	Items           []CartLineItem  `json:"items"`
	SubTotal        decimal.Decimal `json:"subTotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCharges decimal.Decimal `json:"shippingCharges"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Coupon          AppliedCoupon   `json:"coupon"`
	ShippingInfo    *ShippingInfo   `json:"shippingInfo,omitempty"`
}

// Clone returns a deep copy of the cart
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]CartLineItem(nil), c.Items...)
	if c.ShippingInfo != nil {
		info := *c.ShippingInfo
		out.ShippingInfo = &info
	}
	return out
}

// Product is a catalog/search result record
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Category   string          `json:"category,omitempty"`
	PhotoRef   string          `json:"photoRef,omitempty"`
	Rating     float64         `json:"rating,omitempty"`
	NumReviews int             `json:"numReviews,omitempty"`
}

// Review is a product review record
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   bool      `json:"pending,omitempty"` // optimistic insert not yet confirmed
}

// OrderItem is a line of a placed order
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	PhotoRef  string          `json:"photoRef,omitempty"`
}

// Order is an order record as returned by the backend
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingInfo    ShippingInfo    `json:"shippingInfo"`
	SubTotal        decimal.Decimal `json:"subTotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCharges decimal.Decimal `json:"shippingCharges"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"couponCode,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// UserProfile is the cached profile of the logged-in user
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Photo string `json:"photo,omitempty"`
}
