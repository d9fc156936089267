package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
)

const maxAdminPageLimit = 100

// HandleListOrders handles GET /v1/admin/orders (back-office listing, one page per request).
// Query: page, limit and the usual filter parameters.
func HandleListOrders(backend gateway.PageSource, defaultLimit int, logger *zap.Logger) gin.HandlerFunc {
	fetch := gateway.Fetcher[domain.Order](backend, domain.ResourceAdminOrders)

	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
		if limit < 1 || limit > maxAdminPageLimit {
			limit = defaultLimit
		}

		filter, err := parseFilter(c)
		if err != nil {
			writeError(c, err, logger)
			return
		}

		result, err := fetch(c.Request.Context(), filter, page, limit)
		if err != nil {
			writeError(c, err, logger)
			return
		}

		orders := make([]OrderView, 0, len(result.Records))
		for _, o := range result.Records {
			orders = append(orders, newOrderView(o))
		}
		resp := gin.H{
			"orders": orders,
			"page":   page,
			"limit":  limit,
		}
		if result.Pagination != nil {
			resp["pagination"] = result.Pagination
		}
		c.JSON(http.StatusOK, resp)
	}
}
