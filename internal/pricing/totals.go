package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
)

// Totals are the derived money fields of a cart
type Totals struct {
	SubTotal        decimal.Decimal `json:"subTotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCharges decimal.Decimal `json:"shippingCharges"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
}

// Compute derives the totals from line items and coupon. It is pure and does not round;
// rounding belongs to presentation.
func Compute(items []domain.CartLineItem, coupon domain.AppliedCoupon, policy Policy) Totals {
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.LineTotal())
	}

	discount := decimal.Zero
	if coupon.IsValid {
		discount = coupon.DiscountAmount
	}

	t := Totals{
		SubTotal:        subTotal,
		Tax:             policy.Tax(subTotal),
		ShippingCharges: policy.Shipping(subTotal, len(items)),
		Discount:        discount,
	}
	t.Total = decimal.Max(decimal.Zero, t.SubTotal.Add(t.Tax).Add(t.ShippingCharges).Sub(t.Discount))
	return t
}

// Equal compares totals by value
func (t Totals) Equal(o Totals) bool {
	return t.SubTotal.Equal(o.SubTotal) &&
		t.Tax.Equal(o.Tax) &&
		t.ShippingCharges.Equal(o.ShippingCharges) &&
		t.Discount.Equal(o.Discount) &&
		t.Total.Equal(o.Total)
}

// Round2 rounds a money value for display
func Round2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
