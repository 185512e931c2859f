package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/event"
	"github.com/utafrali/StorefrontGo/internal/repository"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// RatingService implements the business logic for product ratings.
type RatingService struct {
	repo     repository.RatingRepository
	cache    ProductCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingService creates a new rating service. cache may be nil.
func NewRatingService(repo repository.RatingRepository, cache ProductCache, producer *event.Producer, logger *slog.Logger) *RatingService {
	return &RatingService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// SubmitRatingInput holds the parameters for submitting a rating.
type SubmitRatingInput struct {
	ProductID string
	UserID    string
	Value     int
}

// SubmitRating records a user's rating for a product and returns the product
// with its refreshed aggregate. Each user may rate a product once.
func (s *RatingService) SubmitRating(ctx context.Context, input *SubmitRatingInput) (*domain.Product, *domain.Rating, error) {
	if _, err := uuid.Parse(input.ProductID); err != nil {
		return nil, nil, apperrors.InvalidInput("product id must be a valid UUID")
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		return nil, nil, apperrors.InvalidInput("user id must be a valid UUID")
	}
	if !domain.IsValidRatingValue(input.Value) {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("rating value must be between %d and %d", domain.MinRatingValue, domain.MaxRatingValue))
	}

	rating := &domain.Rating{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Value:     input.Value,
		CreatedAt: time.Now().UTC(),
	}

	product, err := s.repo.Submit(ctx, rating)
	if err != nil {
		return nil, nil, fmt.Errorf("submit rating: %w", err)
	}

	s.invalidateProduct(ctx, product.ID)

	if err := s.producer.PublishProductRated(ctx, product, rating); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rated event",
			slog.String("product_id", product.ID),
			slog.String("rating_id", rating.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "rating submitted",
		slog.String("product_id", product.ID),
		slog.String("user_id", rating.UserID),
		slog.Int("value", rating.Value),
		slog.Int64("total_reviews", product.TotalReviews),
		slog.Float64("rate_average", product.RateAverage),
	)

	return product, rating, nil
}

// RatingListResult contains ratings and the product's aggregate summary.
type RatingListResult struct {
	Ratings    []domain.Rating        `json:"data"`
	Summary    domain.RatingAggregate `json:"summary"`
	TotalCount int                    `json:"total_count"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
}

// ListRatings returns paginated ratings for a product, newest first, along
// with the product's aggregate summary.
func (s *RatingService) ListRatings(ctx context.Context, productID string, page, perPage int) (*RatingListResult, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperrors.InvalidInput("product id must be a valid UUID")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	ratings, total, err := s.repo.ListByProduct(ctx, productID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	summary, err := s.repo.GetSummary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &RatingListResult{
		Ratings:    ratings,
		Summary:    summary,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

func (s *RatingService) invalidateProduct(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
