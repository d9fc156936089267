package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// DefaultTimeout bounds a single backend request
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept for messages
const maxErrorBody = 4 << 10

// Client calls the storefront REST backend
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend HTTP client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// PageResponse is the list envelope returned by collection endpoints
type PageResponse struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Records    []json.RawMessage      `json:"records"`
	Pagination *collection.Pagination `json:"pagination,omitempty"`
}

// MutationRequest describes one create, update or delete
type MutationRequest struct {
	Resource  domain.Resource
	Operation domain.Operation
	ID        string
	Payload   interface{}
}

// MutationResponse is the envelope returned by mutation endpoints
type MutationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Record  json.RawMessage `json:"record,omitempty"`
}

type couponResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

// FetchPage loads one page of a collection resource
func (c *Client) FetchPage(ctx context.Context, resource domain.Resource, filter collection.Filter, page, limit int) (*PageResponse, error) {
	q := filter.Values()
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out PageResponse
	op := "fetch " + string(resource)
	if err := c.do(ctx, op, http.MethodGet, "/"+string(resource), q, nil, "", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &errors.ErrValidation{Message: fallback(out.Message, op+" was not successful")}
	}
	return &out, nil
}

// Mutate sends a create (POST), update (PUT /{id}) or delete (DELETE /{id})
func (c *Client) Mutate(ctx context.Context, req MutationRequest) (*MutationResponse, error) {
	var method, path string
	switch req.Operation {
	case domain.OperationCreate:
		method, path = http.MethodPost, "/"+string(req.Resource)
	case domain.OperationUpdate, domain.OperationDelete:
		if req.ID == "" {
			return nil, &errors.ErrValidation{Message: "id is required", Fields: map[string]string{"id": "required"}}
		}
		method = http.MethodPut
		if req.Operation == domain.OperationDelete {
			method = http.MethodDelete
		}
		path = "/" + string(req.Resource) + "/" + url.PathEscape(req.ID)
	default:
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("unknown operation %q", req.Operation)}
	}

	key, ok := idempotencyKeyFromContext(ctx)
	if !ok {
		key = uuid.NewString()
	}

	var out MutationResponse
	op := string(req.Operation) + " " + string(req.Resource)
	if err := c.do(ctx, op, method, path, nil, req.Payload, key, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &errors.ErrValidation{Message: fallback(out.Message, op+" was not successful")}
	}
	return &out, nil
}

// ValidateCoupon asks the backend for the discount a code grants
func (c *Client) ValidateCoupon(ctx context.Context, code string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("code", code)

	var out couponResponse
	err := c.do(ctx, "validate coupon", http.MethodGet, "/"+string(domain.ResourceCoupons)+"/validate", q, nil, "", &out)
	if err != nil {
		var verr *errors.ErrValidation
		if errors.As(err, &verr) {
			return decimal.Zero, &errors.ErrInvalidCoupon{Code: code, Message: verr.Message}
		}
		// Unknown code
		if errors.IsNotFound(err) {
			return decimal.Zero, &errors.ErrInvalidCoupon{Code: code, Message: "coupon not found"}
		}
		return decimal.Zero, err
	}
	if !out.Success || !out.Discount.IsPositive() {
		return decimal.Zero, &errors.ErrInvalidCoupon{Code: code, Message: fallback(out.Message, "coupon not applicable")}
	}
	return out.Discount, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body interface{}, idempotencyKey string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("backend client not configured: base URL required")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &errors.ErrUnauthorized{Message: err.Error()}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return &errors.ErrTransient{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.classify(op, path, resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) classify(op, path string, status int, raw []byte) error {
	msg := errorMessage(raw)
	c.logger.Debug("Backend returned error status",
		zap.String("op", op),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("message", msg),
	)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &errors.ErrUnauthorized{Message: fallback(msg, http.StatusText(status))}
	case status == http.StatusNotFound:
		return &errors.ErrNotFound{Resource: op, ID: path}
	case status >= 400 && status < 500:
		return &errors.ErrValidation{Message: fallback(msg, http.StatusText(status))}
	default:
		return &errors.ErrTransient{Op: op, StatusCode: status}
	}
}

// errorMessage pulls {"message": "..."} out of an error body, else returns the trimmed body
func errorMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return strings.TrimSpace(string(raw))
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
