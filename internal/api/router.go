package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/api/handlers"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/api/middleware"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/config"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, sessions *session.Manager, backend gateway.PageSource, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront Session API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/cart",
				"POST /v1/cart/checkout",
				"GET /v1/orders",
				"GET /v1/products",
				"GET /v1/reviews/:productId",
				"GET /v1/wishlist",
				"GET /v1/notices",
				"GET /v1/admin/orders",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Admin routes (back-office key, no user session)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminMiddleware(cfg.Auth.AdminAPIKeyHash, logger))
		{
			adminRoutes.GET("/orders", handlers.HandleListOrders(backend, cfg.Session.PageLimit, logger))
		}

		// User routes (require bearer token)
		userRoutes := v1.Group("")
		userRoutes.Use(middleware.AuthMiddleware(middleware.TokenKeys{
			Secret:       cfg.Auth.JWTSecret,
			PublicKeyPEM: cfg.Auth.JWTPublicKey,
		}, logger))
		userRoutes.Use(middleware.IdempotencyMiddleware())
		{
			cart := userRoutes.Group("/cart")
			cart.GET("", handlers.HandleGetCart(sessions, logger))
			cart.DELETE("", handlers.HandleResetCart(sessions, logger))
			cart.POST("/items", handlers.HandleAddCartItem(sessions, logger))
			cart.POST("/items/:productId/increment", handlers.HandleIncrementCartItem(sessions, logger))
			cart.POST("/items/:productId/decrement", handlers.HandleDecrementCartItem(sessions, logger))
			cart.DELETE("/items/:productId", handlers.HandleRemoveCartItem(sessions, logger))
			cart.PUT("/shipping", handlers.HandleSetShippingInfo(sessions, logger))
			cart.PUT("/coupon", handlers.HandleEnterCoupon(sessions, logger))
			cart.POST("/checkout", handlers.HandleCheckout(sessions, logger))

			handlers.Orders.Register(userRoutes.Group("/orders"), sessions, logger)
			handlers.Products.Register(userRoutes.Group("/products"), sessions, logger)

			reviews := userRoutes.Group("/reviews/:productId")
			handlers.Reviews.Register(reviews, sessions, logger)
			reviews.POST("", handlers.HandleCreateReview(sessions, logger))
			reviews.PUT("/:reviewId", handlers.HandleUpdateReview(sessions, logger))
			reviews.DELETE("/:reviewId", handlers.HandleDeleteReview(sessions, logger))

			userRoutes.GET("/wishlist", handlers.HandleGetWishlist(sessions, logger))
			userRoutes.POST("/wishlist/:productId/toggle", handlers.HandleToggleWishlist(sessions, logger))
			userRoutes.GET("/notices", handlers.HandleGetNotices(sessions, logger))
			userRoutes.POST("/logout", handlers.HandleLogout(sessions, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
