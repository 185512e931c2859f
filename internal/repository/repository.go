package repository

import (
	"context"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID *string
	Status     *string
	Search     *string
	MinPrice   *int64
	MaxPrice   *int64
	SortBy     string
	Page       int
	PerPage    int
}

// ProductRepository defines the interface for product persistence operations.
// The rating aggregate columns are written only by RatingRepository.Submit.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// RatingRepository defines persistence for the rating ledger and the
// product rating aggregate.
type RatingRepository interface {
	// Submit records the rating and updates the product aggregate in one
	// atomic transaction. It fails with a not-found error when the product
	// does not exist and a conflict error when the user has already rated
	// the product. On success it returns the updated product.
	Submit(ctx context.Context, rating *domain.Rating) (*domain.Product, error)

	// ListByProduct returns paginated ratings for a product, newest first,
	// along with the total count.
	ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Rating, int, error)

	// GetSummary returns the product's current rating aggregate. It fails
	// with a not-found error when the product does not exist.
	GetSummary(ctx context.Context, productID string) (domain.RatingAggregate, error)

	// EraseUser removes all of the user's ratings and rebuilds the affected
	// product aggregates from the remaining ledger rows. It returns the
	// number of ratings removed.
	EraseUser(ctx context.Context, userID string) (int, error)
}

// PostFilter defines filter criteria for listing blog posts.
type PostFilter struct {
	CategoryID *string
	AuthorID   *string
	Status     *string
	Search     *string
	Page       int
	PerPage    int
}

// BlogPostRepository defines the interface for blog post persistence operations.
// The reaction counters are written only by ReactionRepository.Submit.
type BlogPostRepository interface {
	// Create inserts a new blog post into the store.
	Create(ctx context.Context, post *domain.BlogPost) error

	// GetByID retrieves a blog post by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.BlogPost, error)

	// GetBySlug retrieves a blog post by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)

	// IncrementViews bumps the post's view counter by one.
	IncrementViews(ctx context.Context, id string) error

	// List returns blog posts matching the given filter along with the total count.
	List(ctx context.Context, filter PostFilter) ([]domain.BlogPost, int, error)

	// Update modifies an existing blog post in the store.
	Update(ctx context.Context, post *domain.BlogPost) error

	// Delete removes a blog post from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReactionRepository defines persistence for the reaction ledger and the
// blog post reaction counters.
type ReactionRepository interface {
	// Submit records or updates the user's reaction and adjusts the post
	// counters in one atomic transaction. Resubmitting the current direction
	// is a no-op that writes nothing. On success it returns the updated post,
	// the reaction row, and the transition that was applied.
	Submit(ctx context.Context, postID, userID string, direction domain.Direction) (*domain.BlogPost, *domain.Reaction, domain.ReactionOutcome, error)

	// EraseUser removes all of the user's reactions and recomputes the
	// counters of the affected posts. View counts are historical and are not
	// reversed. It returns the number of reactions removed.
	EraseUser(ctx context.Context, userID string) (int, error)
}
