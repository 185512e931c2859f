package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/event"
	"github.com/utafrali/StorefrontGo/internal/repository"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/slug"
)

// ProductCache caches product reads. A nil check guards every use so the
// service works without a cache wired in.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, bool, error)
	SetProduct(ctx context.Context, p *domain.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	cache    ProductCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(repo repository.ProductRepository, cache ProductCache, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	CategoryID  *string
	BasePrice   int64
	Currency    string
	Metadata    map[string]any
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	CategoryID  *string
	Status      *string
	BasePrice   *int64
	Currency    *string
	Metadata    map[string]any
}

// CreateProduct creates a new product with the given input.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.BasePrice < 0 {
		return nil, apperrors.InvalidInput("base price must not be negative")
	}
	if len(input.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        generateSlug(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Status:      domain.ProductStatusDraft,
		BasePrice:   input.BasePrice,
		Currency:    strings.ToUpper(input.Currency),
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if product.Metadata == nil {
		product.Metadata = make(map[string]any)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID, serving from the cache when
// possible.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetProduct(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "product cache read failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		} else if found {
			return cached, nil
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	s.cacheProduct(ctx, product)
	return product, nil
}

// GetProductBySlug retrieves a product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if !domain.IsValidSortBy(filter.SortBy) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid sort %q, must be one of: %s", filter.SortBy, strings.Join(domain.ValidSortByValues(), ", ")))
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies partial updates to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = generateSlug(*input.Name)
	}

	if input.Description != nil {
		product.Description = *input.Description
	}

	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}

	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *input.Status, strings.Join(domain.ValidStatuses(), ", ")))
		}
		product.Status = *input.Status
	}

	if input.BasePrice != nil {
		if *input.BasePrice < 0 {
			return nil, apperrors.InvalidInput("base price must not be negative")
		}
		product.BasePrice = *input.BasePrice
	}

	if input.Currency != nil {
		if len(*input.Currency) != 3 {
			return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
		}
		product.Currency = strings.ToUpper(*input.Currency)
	}

	if input.Metadata != nil {
		product.Metadata = input.Metadata
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateProduct(ctx, product.ID)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	// Verify the product exists before deleting.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidateProduct(ctx, id)

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

func (s *ProductService) cacheProduct(ctx context.Context, product *domain.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) invalidateProduct(ctx context.Context, id string) {
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

// generateSlug creates a URL-friendly slug from the given name.
func generateSlug(name string) string {
	return slug.Generate(name)
}
