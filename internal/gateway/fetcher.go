package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
)

// PageSource loads raw collection pages. *Client implements it.
type PageSource interface {
	FetchPage(ctx context.Context, resource domain.Resource, filter collection.Filter, page, limit int) (*PageResponse, error)
}

// Fetcher adapts a PageSource to a typed collection.FetchFunc
func Fetcher[T any](src PageSource, resource domain.Resource) collection.FetchFunc[T] {
	return func(ctx context.Context, filter collection.Filter, page, limit int) (collection.Page[T], error) {
		resp, err := src.FetchPage(ctx, resource, filter, page, limit)
		if err != nil {
			return collection.Page[T]{}, err
		}
		records := make([]T, 0, len(resp.Records))
		for i, raw := range resp.Records {
			var rec T
			if err := json.Unmarshal(raw, &rec); err != nil {
				return collection.Page[T]{}, fmt.Errorf("failed to decode %s record %d: %w", resource, i, err)
			}
			records = append(records, rec)
		}
		return collection.Page[T]{Records: records, Pagination: resp.Pagination}, nil
	}
}

// DecodeRecord unmarshals the record carried by a mutation response. It returns nil when the
// backend sent none.
func DecodeRecord[T any](resp *MutationResponse) (*T, error) {
	if resp == nil || len(resp.Record) == 0 || string(resp.Record) == "null" {
		return nil, nil
	}
	var rec T
	if err := json.Unmarshal(resp.Record, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode mutation record: %w", err)
	}
	return &rec, nil
}
