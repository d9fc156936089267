package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Policy holds the business rates. The engine never hardcodes them.
type Policy struct {
	TaxPercent            decimal.Decimal
	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal // <= 0 disables free shipping
}

// PolicyProvider supplies the current pricing policy
type PolicyProvider interface {
	Policy() Policy
}

// StaticPolicy is a PolicyProvider backed by fixed configuration values
type StaticPolicy Policy

func (p StaticPolicy) Policy() Policy {
	return Policy(p)
}

// Tax returns TaxPercent of subTotal
func (p Policy) Tax(subTotal decimal.Decimal) decimal.Decimal {
	return subTotal.Mul(p.TaxPercent).Div(hundred)
}

// Shipping returns the flat fee, or zero for an empty cart or when subTotal reaches the
// free-shipping threshold.
func (p Policy) Shipping(subTotal decimal.Decimal, itemCount int) decimal.Decimal {
	if itemCount == 0 {
		return decimal.Zero
	}
	if p.FreeShippingThreshold.IsPositive() && subTotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFlatFee
}
