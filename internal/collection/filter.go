package collection

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filter describes a remote query. Every field is optional.
type Filter struct {
	Search    string
	Status    string
	ProductID string
	Category  string
	Sort      string
	From      time.Time
	To        time.Time
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// Values renders the filter as query parameters, omitting unset fields
func (f Filter) Values() url.Values {
	v := url.Values{}
	setIf := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	setIf("search", f.Search)
	setIf("status", f.Status)
	setIf("productId", f.ProductID)
	setIf("category", f.Category)
	setIf("sort", f.Sort)
	if !f.From.IsZero() {
		v.Set("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.UTC().Format(time.RFC3339))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", f.MaxPrice.String())
	}
	return v
}

// Key is the canonical form of the whole descriptor
func (f Filter) Key() string {
	return f.Values().Encode()
}

// Equal compares the full descriptor
func (f Filter) Equal(o Filter) bool {
	return f.Key() == o.Key()
}
