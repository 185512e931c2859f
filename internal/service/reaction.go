package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/event"
	"github.com/utafrali/StorefrontGo/internal/repository"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// PostCache caches blog post reads. A nil check guards every use so the
// service works without a cache wired in.
type PostCache interface {
	GetPost(ctx context.Context, id string) (*domain.BlogPost, bool, error)
	SetPost(ctx context.Context, p *domain.BlogPost) error
	InvalidatePost(ctx context.Context, id string) error
}

// ReactionService implements the business logic for blog post reactions.
type ReactionService struct {
	repo     repository.ReactionRepository
	cache    PostCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReactionService creates a new reaction service. cache may be nil.
func NewReactionService(repo repository.ReactionRepository, cache PostCache, producer *event.Producer, logger *slog.Logger) *ReactionService {
	return &ReactionService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReactionInput holds the parameters for submitting a reaction.
type SubmitReactionInput struct {
	PostID    string
	UserID    string
	Direction string
}

// SubmitReactionResult is the outcome of a reaction submission.
type SubmitReactionResult struct {
	Post     *domain.BlogPost
	Reaction *domain.Reaction
	Outcome  domain.ReactionOutcome
}

// SubmitReaction records a user's like or dislike on a blog post. Repeating
// the same direction is a no-op; switching direction flips the counters.
func (s *ReactionService) SubmitReaction(ctx context.Context, input *SubmitReactionInput) (*SubmitReactionResult, error) {
	if _, err := uuid.Parse(input.PostID); err != nil {
		return nil, apperrors.InvalidInput("post id must be a valid UUID")
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		return nil, apperrors.InvalidInput("user id must be a valid UUID")
	}
	direction := domain.Direction(input.Direction)
	if !domain.IsValidDirection(direction) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("direction must be %q or %q", domain.DirectionLike, domain.DirectionDislike))
	}

	post, reaction, outcome, err := s.repo.Submit(ctx, input.PostID, input.UserID, direction)
	if err != nil {
		return nil, fmt.Errorf("submit reaction: %w", err)
	}

	if outcome != domain.ReactionNoop {
		s.invalidatePost(ctx, post.ID)

		if err := s.producer.PublishPostReacted(ctx, post, reaction, outcome == domain.ReactionFlip); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish post.reacted event",
				slog.String("post_id", post.ID),
				slog.String("user_id", input.UserID),
				slog.String("error", err.Error()),
			)
			// Do not fail the operation if event publishing fails.
		}
	}

	s.logger.InfoContext(ctx, "reaction submitted",
		slog.String("post_id", post.ID),
		slog.String("user_id", input.UserID),
		slog.String("direction", string(direction)),
		slog.String("outcome", outcome.String()),
		slog.Int64("like_count", post.LikeCount),
		slog.Int64("dislike_count", post.DislikeCount),
	)

	return &SubmitReactionResult{
		Post:     post,
		Reaction: reaction,
		Outcome:  outcome,
	}, nil
}

func (s *ReactionService) invalidatePost(ctx context.Context, id string) {
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
