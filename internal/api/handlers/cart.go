package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
)

// AddItemRequest represents an add-or-update cart item request
type AddItemRequest struct {
	ProductID  string          `json:"productId" binding:"required"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	StockLimit int             `json:"stockLimit"`
	PhotoRef   string          `json:"photoRef,omitempty"`
}

// CouponRequest represents an edit of the coupon field
type CouponRequest struct {
	Code string `json:"code"`
}

// CartItemView is a cart line as presented to the UI
type CartItemView struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unitPrice"`
	Quantity     int    `json:"quantity"`
	StockLimit   int    `json:"stockLimit"`
	LineTotal    string `json:"lineTotal"`
	PhotoRef     string `json:"photoRef,omitempty"`
	CanIncrement bool   `json:"canIncrement"`
	CanDecrement bool   `json:"canDecrement"`
}

// CouponView is the coupon field state
type CouponView struct {
	Code           string             `json:"code"`
	State          domain.CouponState `json:"state"`
	IsValid        bool               `json:"isValid"`
	DiscountAmount string             `json:"discountAmount"`
}

// CartView is the cart with money rounded to 2 decimals
type CartView struct {
	Items           []CartItemView       `json:"items"`
	SubTotal        string               `json:"subTotal"`
	Tax             string               `json:"tax"`
	ShippingCharges string               `json:"shippingCharges"`
	Discount        string               `json:"discount"`
	Total           string               `json:"total"`
	Coupon          CouponView           `json:"coupon"`
	ShippingInfo    *domain.ShippingInfo `json:"shippingInfo,omitempty"`
}

func newCartView(s *session.Session) CartView {
	c := s.Cart().Snapshot()
	view := CartView{
		Items:           make([]CartItemView, 0, len(c.Items)),
		SubTotal:        pricing.Round2(c.SubTotal),
		Tax:             pricing.Round2(c.Tax),
		ShippingCharges: pricing.Round2(c.ShippingCharges),
		Discount:        pricing.Round2(c.Discount),
		Total:           pricing.Round2(c.Total),
		Coupon: CouponView{
			Code:           c.Coupon.Code,
			State:          c.Coupon.State,
			IsValid:        c.Coupon.IsValid,
			DiscountAmount: pricing.Round2(c.Coupon.DiscountAmount),
		},
		ShippingInfo: c.ShippingInfo,
	}
	for _, it := range c.Items {
		view.Items = append(view.Items, CartItemView{
			ProductID:    it.ProductID,
			Name:         it.Name,
			UnitPrice:    pricing.Round2(it.UnitPrice),
			Quantity:     it.Quantity,
			StockLimit:   it.StockLimit,
			LineTotal:    pricing.Round2(it.LineTotal()),
			PhotoRef:     it.PhotoRef,
			CanIncrement: it.Quantity < it.StockLimit,
			CanDecrement: it.Quantity > 1,
		})
	}
	return view
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newCartView(s))
	}
}

// HandleAddCartItem handles POST /v1/cart/items
func HandleAddCartItem(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		err := s.Cart().AddOrUpdateItem(domain.CartLineItem{
			ProductID:  req.ProductID,
			Name:       req.Name,
			UnitPrice:  req.UnitPrice,
			Quantity:   req.Quantity,
			StockLimit: req.StockLimit,
			PhotoRef:   req.PhotoRef,
		})
		if err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, newCartView(s))
	}
}

// HandleIncrementCartItem handles POST /v1/cart/items/:productId/increment.
// At the stock limit the cart is returned unchanged.
func HandleIncrementCartItem(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		changed := s.Cart().IncrementQuantity(c.Param("productId"))
		c.JSON(http.StatusOK, gin.H{"changed": changed, "cart": newCartView(s)})
	}
}

// HandleDecrementCartItem handles POST /v1/cart/items/:productId/decrement
func HandleDecrementCartItem(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		changed := s.Cart().DecrementQuantity(c.Param("productId"))
		c.JSON(http.StatusOK, gin.H{"changed": changed, "cart": newCartView(s)})
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:productId
func HandleRemoveCartItem(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		if !s.Cart().RemoveItem(c.Param("productId")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not in cart"})
			return
		}
		c.JSON(http.StatusOK, newCartView(s))
	}
}

// HandleResetCart handles DELETE /v1/cart
func HandleResetCart(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		s.ResetCart()
		c.JSON(http.StatusOK, newCartView(s))
	}
}

// HandleSetShippingInfo handles PUT /v1/cart/shipping
func HandleSetShippingInfo(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}

		var req domain.ShippingInfo
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if err := s.Cart().SetShippingInfo(req); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, newCartView(s))
	}
}

// HandleEnterCoupon handles PUT /v1/cart/coupon. The response shows the pending state;
// the validated discount appears on a later read.
func HandleEnterCoupon(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}

		var req CouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		s.EnterCoupon(req.Code)
		c.JSON(http.StatusAccepted, newCartView(s))
	}
}

// HandleCheckout handles POST /v1/cart/checkout
func HandleCheckout(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}

		order, err := s.PlaceOrder(c.Request.Context())
		if err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": newOrderView(*order)})
	}
}
