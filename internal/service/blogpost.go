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

// BlogPostService implements the business logic for blog post operations.
type BlogPostService struct {
	repo     repository.BlogPostRepository
	cache    PostCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewBlogPostService creates a new blog post service. cache may be nil.
func NewBlogPostService(repo repository.BlogPostRepository, cache PostCache, producer *event.Producer, logger *slog.Logger) *BlogPostService {
	return &BlogPostService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateBlogPostInput holds the parameters for creating a blog post.
type CreateBlogPostInput struct {
	Title      string
	Body       string
	AuthorID   string
	CategoryID *string
}

// UpdateBlogPostInput holds the parameters for updating a blog post.
type UpdateBlogPostInput struct {
	Title      *string
	Body       *string
	CategoryID *string
	Status     *string
}

// CreateBlogPost creates a new blog post in draft status.
func (s *BlogPostService) CreateBlogPost(ctx context.Context, input *CreateBlogPostInput) (*domain.BlogPost, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("post title is required")
	}
	if input.Body == "" {
		return nil, apperrors.InvalidInput("post body is required")
	}
	if _, err := uuid.Parse(input.AuthorID); err != nil {
		return nil, apperrors.InvalidInput("author id must be a valid UUID")
	}

	now := time.Now().UTC()
	post := &domain.BlogPost{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Slug:       generateSlug(input.Title),
		Body:       input.Body,
		AuthorID:   input.AuthorID,
		CategoryID: input.CategoryID,
		Status:     domain.PostStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}

	if err := s.producer.PublishPostCreated(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.created event",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "blog post created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
	)

	return post, nil
}

// GetBlogPost retrieves a blog post by its ID, serving from the cache when
// possible.
func (s *BlogPostService) GetBlogPost(ctx context.Context, id string) (*domain.BlogPost, error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetPost(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "post cache read failed",
				slog.String("post_id", id),
				slog.String("error", err.Error()),
			)
		} else if found {
			return cached, nil
		}
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blog post by id: %w", err)
	}

	s.cachePost(ctx, post)
	return post, nil
}

// GetBlogPostBySlug retrieves a blog post by its slug and counts the read as
// a view. Slug lookups are the public permalink path; id lookups serve the
// cache and admin tooling and do not count.
func (s *BlogPostService) GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get blog post by slug: %w", err)
	}

	if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
		s.logger.WarnContext(ctx, "view count increment failed",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	} else {
		post.ViewCount++
	}

	return post, nil
}

// ListBlogPosts returns a filtered, paginated list of blog posts.
func (s *BlogPostService) ListBlogPosts(ctx context.Context, filter repository.PostFilter) ([]domain.BlogPost, int, error) {
	if filter.Status != nil && !domain.IsValidPostStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be %q or %q", *filter.Status, domain.PostStatusDraft, domain.PostStatusPublished))
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

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}

	return posts, total, nil
}

// UpdateBlogPost applies partial updates to an existing blog post. Counters
// and last_reaction are owned by the reaction pipeline and cannot be set
// here.
func (s *BlogPostService) UpdateBlogPost(ctx context.Context, id string, input *UpdateBlogPostInput) (*domain.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blog post for update: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("post title must not be empty")
		}
		post.Title = *input.Title
		post.Slug = generateSlug(*input.Title)
	}

	if input.Body != nil {
		if *input.Body == "" {
			return nil, apperrors.InvalidInput("post body must not be empty")
		}
		post.Body = *input.Body
	}

	if input.CategoryID != nil {
		post.CategoryID = input.CategoryID
	}

	if input.Status != nil {
		if !domain.IsValidPostStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be %q or %q", *input.Status, domain.PostStatusDraft, domain.PostStatusPublished))
		}
		post.Status = *input.Status
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update blog post: %w", err)
	}

	s.invalidatePost(ctx, post.ID)

	s.logger.InfoContext(ctx, "blog post updated",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.String("status", post.Status),
	)

	return post, nil
}

// DeleteBlogPost removes a blog post by its ID. The post's reaction rows go
// with it.
func (s *BlogPostService) DeleteBlogPost(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get blog post for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}

	s.invalidatePost(ctx, id)

	if err := s.producer.PublishPostDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.deleted event",
			slog.String("post_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "blog post deleted",
		slog.String("post_id", id),
	)

	return nil
}

func (s *BlogPostService) cachePost(ctx context.Context, post *domain.BlogPost) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetPost(ctx, post); err != nil {
		s.logger.WarnContext(ctx, "post cache write failed",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BlogPostService) invalidatePost(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePost(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "post cache invalidation failed",
			slog.String("post_id", id),
			slog.String("error", err.Error()),
		)
	}
}
