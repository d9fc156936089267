package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// IdempotencyMiddleware forwards a client-supplied Idempotency-Key to the backend mutation
// made while serving the request. Requests without the header get a fresh key per mutation.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH/DELETE requests
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(gateway.WithIdempotencyKey(c.Request.Context(), key))
		c.Next()
	}
}
