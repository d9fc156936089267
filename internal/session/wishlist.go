package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Wishlist returns the wishlisted product ids in the order they were added
func (s *Session) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.wishlist...)
}

// InWishlist reports whether a product is wishlisted
func (s *Session) InWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.wishlist, productID) >= 0
}

// ToggleWishlist adds or removes a product. The local list changes immediately; if the
// backend refuses, the change is reverted and a notice is published.
// Returns whether the product is wishlisted afterwards.
func (s *Session) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	if productID == "" {
		return false, &errors.ErrValidation{Message: "productId is required", Fields: map[string]string{"productId": "required"}}
	}

	s.mu.Lock()
	idx := indexOf(s.wishlist, productID)
	added := idx < 0
	if added {
		s.wishlist = append(s.wishlist, productID)
	} else {
		s.wishlist = append(s.wishlist[:idx:idx], s.wishlist[idx+1:]...)
	}
	snapshot := append([]string{}, s.wishlist...)
	s.mu.Unlock()
	s.saveWishlist(ctx, snapshot)

	req := gateway.MutationRequest{Resource: domain.ResourceWishlist, Operation: domain.OperationDelete, ID: productID}
	if added {
		req = gateway.MutationRequest{
			Resource:  domain.ResourceWishlist,
			Operation: domain.OperationCreate,
			Payload:   map[string]string{"productId": productID},
		}
	}
	if _, err := s.mutate(ctx, req); err != nil {
		s.mu.Lock()
		if added {
			if i := indexOf(s.wishlist, productID); i >= 0 {
				s.wishlist = append(s.wishlist[:i:i], s.wishlist[i+1:]...)
			}
		} else if indexOf(s.wishlist, productID) < 0 {
			s.wishlist = append(s.wishlist, productID)
		}
		snapshot = append([]string{}, s.wishlist...)
		s.mu.Unlock()
		s.saveWishlist(ctx, snapshot)

		s.logger.Warn("Wishlist change rolled back", zap.String("product_id", productID), zap.Bool("added", added), zap.Error(err))
		s.notices.Error("Could not update wishlist, change reverted")
		return !added, err
	}
	return added, nil
}

func (s *Session) saveWishlist(ctx context.Context, ids []string) {
	if err := s.repo.SaveWishlist(ctx, s.userID, ids); err != nil {
		s.logger.Error("Failed to persist wishlist", zap.Error(err))
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
