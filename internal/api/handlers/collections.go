package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Collection exposes one paginated list of a session over HTTP
type Collection[T any] struct {
	Pick func(s *session.Session, c *gin.Context) *collection.Synchronizer[T]
	View func(T) interface{}
	// Fixed filter fields (e.g. productId for reviews) the query cannot override
	Scope func(c *gin.Context, f *collection.Filter)
}

// SentinelRequest reports the visibility of the end-of-list sentinel
type SentinelRequest struct {
	Visible bool `json:"visible"`
}

// CollectionView is the accumulated list state
type CollectionView struct {
	Items        []interface{} `json:"items"`
	CurrentPage  int           `json:"currentPage"`
	TotalPages   int           `json:"totalPages"`
	TotalRecords int           `json:"totalRecords"`
	HasMore      bool          `json:"hasMore"`
	Loading      bool          `json:"loading"`
	Error        string        `json:"error,omitempty"`
}

func (col Collection[T]) view(st collection.State[T]) CollectionView {
	out := CollectionView{
		Items:        make([]interface{}, 0, len(st.Items)),
		CurrentPage:  st.CurrentPage,
		TotalPages:   st.TotalPages,
		TotalRecords: st.TotalRecords,
		HasMore:      st.HasMore,
		Loading:      st.Loading,
	}
	for _, it := range st.Items {
		out.Items = append(out.Items, col.View(it))
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	return out
}

// HandleQuery applies the filter from the query string. A changed filter resets the list
// and the first page is loaded whenever nothing has been loaded yet.
func (col Collection[T]) HandleQuery(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		filter, err := parseFilter(c)
		if err != nil {
			writeError(c, err, logger)
			return
		}
		if col.Scope != nil {
			col.Scope(c, &filter)
		}

		list := col.Pick(s, c)
		list.SetFilter(filter)
		if st := list.State(); st.CurrentPage == 0 && st.HasMore && st.Err == nil {
			if _, err := list.LoadNextPage(c.Request.Context()); err != nil {
				writeError(c, err, logger)
				return
			}
		}
		c.JSON(http.StatusOK, col.view(list.State()))
	}
}

// HandleNextPage requests the next page
func (col Collection[T]) HandleNextPage(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		list := col.Pick(s, c)
		if _, err := list.LoadNextPage(c.Request.Context()); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, col.view(list.State()))
	}
}

// HandleSentinel receives viewport intersection changes of the end-of-list sentinel
func (col Collection[T]) HandleSentinel(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		var req SentinelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		list := col.Pick(s, c)
		if _, err := list.SentinelVisible(c.Request.Context(), req.Visible); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, col.view(list.State()))
	}
}

// HandleRetry re-issues a failed page fetch
func (col Collection[T]) HandleRetry(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		list := col.Pick(s, c)
		if _, err := list.Retry(c.Request.Context()); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, col.view(list.State()))
	}
}

// HandleRefresh drops the accumulated pages and reloads page 1
func (col Collection[T]) HandleRefresh(sessions *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := openSession(c, sessions, logger)
		if !ok {
			return
		}
		list := col.Pick(s, c)
		if err := list.Refresh(c.Request.Context()); err != nil {
			writeError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, col.view(list.State()))
	}
}

// Register mounts the query and paging routes under g
func (col Collection[T]) Register(g *gin.RouterGroup, sessions *session.Manager, logger *zap.Logger) {
	g.GET("", col.HandleQuery(sessions, logger))
	g.POST("/next", col.HandleNextPage(sessions, logger))
	g.POST("/sentinel", col.HandleSentinel(sessions, logger))
	g.POST("/retry", col.HandleRetry(sessions, logger))
	g.POST("/refresh", col.HandleRefresh(sessions, logger))
}

// Orders is the user's order history
var Orders = Collection[domain.Order]{
	Pick: func(s *session.Session, _ *gin.Context) *collection.Synchronizer[domain.Order] { return s.Orders() },
	View: func(o domain.Order) interface{} { return newOrderView(o) },
}

// Products is the product search
var Products = Collection[domain.Product]{
	Pick: func(s *session.Session, _ *gin.Context) *collection.Synchronizer[domain.Product] { return s.Search() },
	View: func(p domain.Product) interface{} { return newProductView(p) },
}

// Reviews is the review list of the product in the :productId path parameter
var Reviews = Collection[domain.Review]{
	Pick: func(s *session.Session, c *gin.Context) *collection.Synchronizer[domain.Review] {
		return s.Reviews(c.Param("productId"))
	},
	View:  func(r domain.Review) interface{} { return r },
	Scope: func(c *gin.Context, f *collection.Filter) { f.ProductID = c.Param("productId") },
}

// parseFilter reads search, status, productId, category, sort, from, to, minPrice and maxPrice
func parseFilter(c *gin.Context) (collection.Filter, error) {
	f := collection.Filter{
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    strings.TrimSpace(c.Query("status")),
		ProductID: strings.TrimSpace(c.Query("productId")),
		Category:  strings.TrimSpace(c.Query("category")),
		Sort:      strings.TrimSpace(c.Query("sort")),
	}
	fields := map[string]string{}

	for key, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			fields[key] = "must be RFC3339 or YYYY-MM-DD"
			continue
		}
		*dst = t
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fields[key] = "must be a number"
			continue
		}
		*dst = &d
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		fields["to"] = "must not be before from"
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MaxPrice.LessThan(*f.MinPrice) {
		fields["maxPrice"] = "must not be below minPrice"
	}

	if len(fields) > 0 {
		return f, &errors.ErrValidation{Message: "invalid filter", Fields: fields}
	}
	return f, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// OrderView is an order with money rounded to 2 decimals
type OrderView struct {
	ID              string              `json:"id"`
	Status          domain.OrderStatus  `json:"status"`
	Items           []OrderItemView     `json:"items"`
	ShippingInfo    domain.ShippingInfo `json:"shippingInfo"`
	SubTotal        string              `json:"subTotal"`
	Tax             string              `json:"tax"`
	ShippingCharges string              `json:"shippingCharges"`
	Discount        string              `json:"discount"`
	Total           string              `json:"total"`
	CouponCode      string              `json:"couponCode,omitempty"`
	CreatedAt       string              `json:"createdAt,omitempty"`
}

// OrderItemView is one line of an OrderView
type OrderItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	PhotoRef  string `json:"photoRef,omitempty"`
}

func newOrderView(o domain.Order) OrderView {
	v := OrderView{
		ID:              o.ID,
		Status:          o.Status,
		Items:           make([]OrderItemView, 0, len(o.Items)),
		ShippingInfo:    o.ShippingInfo,
		SubTotal:        pricing.Round2(o.SubTotal),
		Tax:             pricing.Round2(o.Tax),
		ShippingCharges: pricing.Round2(o.ShippingCharges),
		Discount:        pricing.Round2(o.Discount),
		Total:           pricing.Round2(o.Total),
		CouponCode:      o.CouponCode,
	}
	if !o.CreatedAt.IsZero() {
		v.CreatedAt = o.CreatedAt.Format(time.RFC3339)
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     pricing.Round2(it.Price),
			Quantity:  it.Quantity,
			PhotoRef:  it.PhotoRef,
		})
	}
	return v
}

// ProductView is a search result with the price rounded to 2 decimals
type ProductView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	Stock      int     `json:"stock"`
	Category   string  `json:"category,omitempty"`
	PhotoRef   string  `json:"photoRef,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	NumReviews int     `json:"numReviews,omitempty"`
}

func newProductView(p domain.Product) ProductView {
	return ProductView{
		ID:         p.ID,
		Name:       p.Name,
		Price:      pricing.Round2(p.Price),
		Stock:      p.Stock,
		Category:   p.Category,
		PhotoRef:   p.PhotoRef,
		Rating:     p.Rating,
		NumReviews: p.NumReviews,
	}
}
