package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/api/middleware"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// openSession resolves the caller's session, refreshing the cached profile from the token claims
func openSession(c *gin.Context, sessions *session.Manager, logger *zap.Logger) (*session.Session, bool) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	s, err := sessions.Open(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, err, logger)
		return nil, false
	}

	if identity.Name != "" || identity.Email != "" {
		profile := domain.UserProfile{ID: identity.UserID, Name: identity.Name, Email: identity.Email, Role: identity.Role}
		if cur := s.Profile(); cur == nil || *cur != profile {
			if err := s.SetProfile(c.Request.Context(), profile); err != nil {
				logger.Warn("Failed to cache profile", zap.String("user_id", identity.UserID), zap.Error(err))
			}
		}
	}
	return s, true
}

// writeError maps typed errors to HTTP responses
func writeError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		validation *errors.ErrValidation
		coupon     *errors.ErrInvalidCoupon
		unauth     *errors.ErrUnauthorized
		notFound   *errors.ErrNotFound
		transient  *errors.ErrTransient
	)
	switch {
	case errors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &coupon):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": coupon.Error()})
	case errors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauth.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &transient):
		logger.Warn("Backend unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable, please retry"})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// HandleLogout handles POST /v1/logout
func HandleLogout(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.GetIdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err := sessions.Logout(c.Request.Context(), identity.UserID); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// HandleGetNotices handles GET /v1/notices. Returned notices are removed from the queue.
func HandleGetNotices(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"notices": s.Notices().Drain()})
	}
}
