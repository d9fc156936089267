package gateway

import (
	"context"
	"strings"
)

// TokenSource supplies the bearer credential for a backend request
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken always returns the same credential (service token from config)
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type (
	tokenKey       struct{}
	idempotencyKey struct{}
)

// WithToken stores the caller's bearer token on the context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFromContext returns the bearer token stored by WithToken
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok && tok != ""
}

// ContextToken forwards the end user's token from the request context,
// falling back to Fallback when the context carries none.
type ContextToken struct {
	Fallback TokenSource
}

func (t ContextToken) Token(ctx context.Context) (string, error) {
	if tok, ok := TokenFromContext(ctx); ok {
		return tok, nil
	}
	if t.Fallback != nil {
		return t.Fallback.Token(ctx)
	}
	return "", nil
}

// WithIdempotencyKey makes the next mutation sent with ctx reuse key instead of a fresh one
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}
