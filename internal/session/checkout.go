package session

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// OrderRequest is the order-creation payload sent to the backend
type OrderRequest struct {
	Items           []domain.OrderItem  `json:"orderItems"`
	ShippingInfo    domain.ShippingInfo `json:"shippingInfo"`
	SubTotal        decimal.Decimal     `json:"subTotal"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingCharges decimal.Decimal     `json:"shippingCharges"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	CouponCode      string              `json:"couponCode,omitempty"`
}

// BuildOrderRequest turns a cart snapshot into an order request. The cart needs at least one
// item and shipping info; the coupon code is only sent when it granted the discount.
func BuildOrderRequest(c domain.Cart) (*OrderRequest, error) {
	fields := map[string]string{}
	if len(c.Items) == 0 {
		fields["items"] = "cart is empty"
	}
	if c.ShippingInfo == nil {
		fields["shippingInfo"] = "required"
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "cart is not ready for checkout", Fields: fields}
	}

	req := &OrderRequest{
		Items:           make([]domain.OrderItem, 0, len(c.Items)),
		ShippingInfo:    *c.ShippingInfo,
		SubTotal:        c.SubTotal,
		Tax:             c.Tax,
		ShippingCharges: c.ShippingCharges,
		Discount:        c.Discount,
		Total:           c.Total,
	}
	for _, it := range c.Items {
		req.Items = append(req.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
			PhotoRef:  it.PhotoRef,
		})
	}
	if c.Coupon.IsValid && c.Discount.IsPositive() {
		req.CouponCode = c.Coupon.Code
	}
	return req, nil
}

// PlaceOrder submits the cart as an order. On success the cart is reset and the order
// history is invalidated. A coupon still pending or rejected simply contributes no discount.
func (s *Session) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	snapshot := s.cart.Snapshot()
	req, err := BuildOrderRequest(snapshot)
	if err != nil {
		return nil, err
	}

	resp, err := s.mutate(ctx, gateway.MutationRequest{
		Resource:  domain.ResourceOrders,
		Operation: domain.OperationCreate,
		Payload:   req,
	})
	if err != nil {
		s.logger.Warn("Failed to place order", zap.Int("items", len(req.Items)), zap.Error(err))
		return nil, err
	}

	order, err := gateway.DecodeRecord[domain.Order](resp)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = &domain.Order{
			Items:           req.Items,
			ShippingInfo:    req.ShippingInfo,
			SubTotal:        req.SubTotal,
			Tax:             req.Tax,
			ShippingCharges: req.ShippingCharges,
			Discount:        req.Discount,
			Total:           req.Total,
			CouponCode:      req.CouponCode,
			Status:          domain.OrderStatusProcessing,
		}
	}

	s.ResetCart()
	s.orders.Reset()
	s.logger.Info("Order placed", zap.String("order_id", order.ID), zap.String("total", order.Total.StringFixed(2)))
	return order, nil
}
