package session

import (
	"context"
	"strings"
	"time"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

type reviewPayload struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Reviews is the paginated review list of a product
func (s *Session) Reviews(productID string) *collection.Synchronizer[domain.Review] {
	return s.ReviewMutations(productID).Synchronizer()
}

// ReviewMutations returns the optimistic wrapper over a product's review list
func (s *Session) ReviewMutations(productID string) *collection.Optimistic[domain.Review] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.reviews[productID]; ok {
		return o
	}
	list := collection.NewSynchronizer("reviews",
		withNotice(s.notices, "reviews", gateway.Fetcher[domain.Review](s, domain.ResourceReviews)),
		func(r domain.Review) string { return r.ID }, s.limit, s.logger)
	list.SetFilter(collection.Filter{ProductID: productID})

	o := collection.NewOptimistic(list, func(r domain.Review, id string) domain.Review {
		r.ID = id
		return r
	}, s.notices, s.logger)
	s.reviews[productID] = o
	return o
}

// CreateReview shows the review at the top of the list right away, then submits it
func (s *Session) CreateReview(ctx context.Context, productID string, rating int, comment string) (*collection.Mutation, error) {
	payload, err := newReviewPayload(productID, rating, comment)
	if err != nil {
		return nil, err
	}

	record := domain.Review{
		ProductID: productID,
		UserID:    s.userID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		CreatedAt: time.Now().UTC(),
		Pending:   true,
	}
	if p := s.Profile(); p != nil {
		record.UserName = p.Name
	}

	return s.ReviewMutations(productID).Create(ctx, record, func(ctx context.Context) (*domain.Review, error) {
		resp, err := s.mutate(ctx, gateway.MutationRequest{
			Resource:  domain.ResourceReviews,
			Operation: domain.OperationCreate,
			Payload:   payload,
		})
		if err != nil {
			return nil, err
		}
		return gateway.DecodeRecord[domain.Review](resp)
	})
}

// UpdateReview edits a review in place, then submits the edit
func (s *Session) UpdateReview(ctx context.Context, productID, reviewID string, rating int, comment string) (*collection.Mutation, error) {
	payload, err := newReviewPayload(productID, rating, comment)
	if err != nil {
		return nil, err
	}

	patch := func(r domain.Review) domain.Review {
		r.Rating = payload.Rating
		r.Comment = payload.Comment
		return r
	}
	return s.ReviewMutations(productID).Update(ctx, reviewID, patch, func(ctx context.Context) (*domain.Review, error) {
		resp, err := s.mutate(ctx, gateway.MutationRequest{
			Resource:  domain.ResourceReviews,
			Operation: domain.OperationUpdate,
			ID:        reviewID,
			Payload:   payload,
		})
		if err != nil {
			return nil, err
		}
		return gateway.DecodeRecord[domain.Review](resp)
	})
}

// DeleteReview removes a review from the list, then deletes it remotely
func (s *Session) DeleteReview(ctx context.Context, productID, reviewID string) (*collection.Mutation, error) {
	return s.ReviewMutations(productID).Delete(ctx, reviewID, func(ctx context.Context) (*domain.Review, error) {
		_, err := s.mutate(ctx, gateway.MutationRequest{
			Resource:  domain.ResourceReviews,
			Operation: domain.OperationDelete,
			ID:        reviewID,
		})
		return nil, err
	})
}

func newReviewPayload(productID string, rating int, comment string) (reviewPayload, error) {
	p := reviewPayload{ProductID: strings.TrimSpace(productID), Rating: rating, Comment: strings.TrimSpace(comment)}
	fields := map[string]string{}
	if p.ProductID == "" {
		fields["productId"] = "required"
	}
	if p.Rating < 1 || p.Rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	if p.Comment == "" {
		fields["comment"] = "required"
	}
	if len(fields) > 0 {
		return p, &errors.ErrValidation{Message: "invalid review", Fields: fields}
	}
	return p, nil
}
