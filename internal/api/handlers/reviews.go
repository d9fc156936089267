package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
)

// ReviewRequest represents a create or update review request
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func mutationResponse(c *gin.Context, m *collection.Mutation, list interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"mutationId": m.ID,
		"state":      m.State(),
		"reviews":    list,
	})
}

// HandleCreateReview handles POST /v1/reviews/:productId
func HandleCreateReview(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		productID := c.Param("productId")
		m, err := s.CreateReview(c.Request.Context(), productID, req.Rating, req.Comment)
		if err != nil {
			writeError(c, err, logger)
			return
		}
		mutationResponse(c, m, Reviews.view(s.Reviews(productID).State()))
	}
}

// HandleUpdateReview handles PUT /v1/reviews/:productId/:reviewId
func HandleUpdateReview(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		productID := c.Param("productId")
		m, err := s.UpdateReview(c.Request.Context(), productID, c.Param("reviewId"), req.Rating, req.Comment)
		if err != nil {
			writeError(c, err, logger)
			return
		}
		mutationResponse(c, m, Reviews.view(s.Reviews(productID).State()))
	}
}

// HandleDeleteReview handles DELETE /v1/reviews/:productId/:reviewId
func HandleDeleteReview(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}

		productID := c.Param("productId")
		m, err := s.DeleteReview(c.Request.Context(), productID, c.Param("reviewId"))
		if err != nil {
			writeError(c, err, logger)
			return
		}
		mutationResponse(c, m, Reviews.view(s.Reviews(productID).State()))
	}
}
