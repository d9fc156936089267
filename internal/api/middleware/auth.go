package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
)

const IdentityContextKey = "identity"

// Claims are the bearer token claims the storefront cares about
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is the authenticated caller
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// TokenKeys are the keys bearer tokens are verified with. Secret accepts HMAC tokens;
// PublicKeyPEM accepts RSA or ECDSA tokens from an external auth provider.
type TokenKeys struct {
	Secret       string
	PublicKeyPEM string
}

// Validate reports whether the keys can verify anything at all
func (k TokenKeys) Validate() error {
	_, _, err := k.keyFunc()
	return err
}

func (k TokenKeys) keyFunc() (jwt.Keyfunc, []string, error) {
	var methods []string
	var public interface{}

	if k.Secret != "" {
		methods = append(methods, "HS256", "HS384", "HS512")
	}
	if pemKey := strings.TrimSpace(k.PublicKeyPEM); pemKey != "" {
		if rsaKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey)); err == nil {
			public = rsaKey
			methods = append(methods, "RS256", "RS384", "RS512", "PS256", "PS384", "PS512")
		} else if ecKey, err := jwt.ParseECPublicKeyFromPEM([]byte(pemKey)); err == nil {
			public = ecKey
			methods = append(methods, "ES256", "ES384", "ES512")
		} else {
			return nil, nil, fmt.Errorf("token public key is not an RSA or ECDSA PEM key")
		}
	}
	if len(methods) == 0 {
		return nil, nil, fmt.Errorf("no token verification key configured")
	}

	secret := []byte(k.Secret)
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
			return secret, nil
		}
		return public, nil
	}, methods, nil
}

// AuthMiddleware requires a bearer JWT whose signature verifies against keys and derives the
// user from its sub claim. Without a usable key every request is refused.
// The raw token is put on the request context so backend calls are made on the user's behalf.
func AuthMiddleware(keys TokenKeys, logger *zap.Logger) gin.HandlerFunc {
	keyFunc, methods, keyErr := keys.keyFunc()
	if keyErr != nil {
		logger.Error("User authentication disabled", zap.Error(keyErr))
	}
	parser := jwt.NewParser(jwt.WithValidMethods(methods))

	return func(c *gin.Context) {
		if keyErr != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		raw := strings.TrimSpace(parts[1])
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			logger.Warn("Failed to authenticate user", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		if claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			c.Abort()
			return
		}

		c.Set(IdentityContextKey, &Identity{
			UserID: claims.Subject,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), raw))
		c.Next()
	}
}

// GetIdentityFromContext retrieves the caller from the Gin context
func GetIdentityFromContext(c *gin.Context) (*Identity, bool) {
	identity, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}

	id, ok := identity.(*Identity)
	return id, ok
}
