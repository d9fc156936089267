package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
)

// HandleGetWishlist handles GET /v1/wishlist
func HandleGetWishlist(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"productIds": s.Wishlist()})
	}
}

// HandleToggleWishlist handles POST /v1/wishlist/:productId/toggle
func HandleToggleWishlist(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		inList, err := s.ToggleWishlist(c.Request.Context(), c.Param("productId"))
		if err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "wishlisted": inList, "productIds": s.Wishlist()})
	}
}
