package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontGo/internal/domain"
	pkgkafka "github.com/utafrali/StorefrontGo/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"
	TopicProductRated   = "storefront.product.rated"

	TopicPostCreated = "storefront.post.created"
	TopicPostDeleted = "storefront.post.deleted"
	TopicPostReacted = "storefront.post.reacted"
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeBlogPost = "blog_post"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	CategoryID  *string        `json:"category_id,omitempty"`
	Status      string         `json:"status"`
	BasePrice   int64          `json:"base_price"`
	Currency    string         `json:"currency"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ProductRatedData is the payload for a product.rated event. It carries the
// ledger entry plus the post-commit aggregate so consumers never have to
// recompute it.
type ProductRatedData struct {
	ProductID    string   `json:"product_id"`
	RatingID     string   `json:"rating_id"`
	UserID       string   `json:"user_id"`
	Value        int      `json:"value"`
	TotalReviews int64    `json:"total_reviews"`
	RateAverage  float64  `json:"rate_average"`
	RatingCounts [5]int64 `json:"rating_counts"`
}

// PostData is the payload for a post.created event.
type PostData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	AuthorID   string  `json:"author_id"`
	CategoryID *string `json:"category_id,omitempty"`
	Status     string  `json:"status"`
}

// PostDeletedData is the payload for a post.deleted event.
type PostDeletedData struct {
	ID string `json:"id"`
}

// PostReactedData is the payload for a post.reacted event. No-op
// resubmissions never produce this event.
type PostReactedData struct {
	PostID       string `json:"post_id"`
	UserID       string `json:"user_id"`
	Direction    string `json:"direction"`
	Flipped      bool   `json:"flipped"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	DislikeCount int64  `json:"dislike_count"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(product *domain.Product) ProductData {
	return ProductData{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		Status:      product.Status,
		BasePrice:   product.BasePrice,
		Currency:    product.Currency,
		Metadata:    product.Metadata,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, ProductDeletedData{ID: id})
}

// PublishProductRated publishes a product.rated event.
func (p *Producer) PublishProductRated(ctx context.Context, product *domain.Product, rating *domain.Rating) error {
	data := ProductRatedData{
		ProductID:    product.ID,
		RatingID:     rating.ID,
		UserID:       rating.UserID,
		Value:        rating.Value,
		TotalReviews: product.TotalReviews,
		RateAverage:  product.RateAverage,
		RatingCounts: product.RatingCounts,
	}
	return p.publish(ctx, TopicProductRated, product.ID, AggregateTypeProduct, data)
}

// PublishPostCreated publishes a post.created event.
func (p *Producer) PublishPostCreated(ctx context.Context, post *domain.BlogPost) error {
	data := PostData{
		ID:         post.ID,
		Title:      post.Title,
		Slug:       post.Slug,
		AuthorID:   post.AuthorID,
		CategoryID: post.CategoryID,
		Status:     post.Status,
	}
	return p.publish(ctx, TopicPostCreated, post.ID, AggregateTypeBlogPost, data)
}

// PublishPostDeleted publishes a post.deleted event.
func (p *Producer) PublishPostDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicPostDeleted, id, AggregateTypeBlogPost, PostDeletedData{ID: id})
}

// PublishPostReacted publishes a post.reacted event.
func (p *Producer) PublishPostReacted(ctx context.Context, post *domain.BlogPost, reaction *domain.Reaction, flipped bool) error {
	data := PostReactedData{
		PostID:       post.ID,
		UserID:       reaction.UserID,
		Direction:    string(reaction.Direction),
		Flipped:      flipped,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
		DislikeCount: post.DislikeCount,
	}
	return p.publish(ctx, TopicPostReacted, post.ID, AggregateTypeBlogPost, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
