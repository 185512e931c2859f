package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/event"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	pkgkafka "github.com/utafrali/StorefrontGo/pkg/kafka"
)

const testPostID = "9c4b7e16-2d3a-4f58-a1c9-6e0d8b5f2a73"

// --- Mock Repository ---

type mockReactionRepository struct {
	mock.Mock
}

func (m *mockReactionRepository) Submit(ctx context.Context, postID, userID string, direction domain.Direction) (*domain.BlogPost, *domain.Reaction, domain.ReactionOutcome, error) {
	args := m.Called(ctx, postID, userID, direction)
	var (
		post     *domain.BlogPost
		reaction *domain.Reaction
	)
	if args.Get(0) != nil {
		post = args.Get(0).(*domain.BlogPost)
	}
	if args.Get(1) != nil {
		reaction = args.Get(1).(*domain.Reaction)
	}
	return post, reaction, args.Get(2).(domain.ReactionOutcome), args.Error(3)
}

func (m *mockReactionRepository) EraseUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// --- Mock Cache ---

type mockPostCache struct {
	mock.Mock
}

func (m *mockPostCache) GetPost(ctx context.Context, id string) (*domain.BlogPost, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.BlogPost), args.Bool(1), args.Error(2)
}

func (m *mockPostCache) SetPost(ctx context.Context, p *domain.BlogPost) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPostCache) InvalidatePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newReactionTestService(repo *mockReactionRepository, cache PostCache) *ReactionService {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewReactionService(repo, cache, producer, logger)
}

func likedPost(likes, dislikes int64, last domain.Direction) *domain.BlogPost {
	return &domain.BlogPost{
		ID:           testPostID,
		Title:        "Hello",
		LikeCount:    likes,
		DislikeCount: dislikes,
		ViewCount:    likes + dislikes,
		LastReaction: &last,
	}
}

// --- Tests ---

func TestSubmitReaction_FirstLike(t *testing.T) {
	repo := new(mockReactionRepository)
	cache := new(mockPostCache)
	svc := newReactionTestService(repo, cache)
	ctx := context.Background()

	post := likedPost(1, 0, domain.DirectionLike)
	reaction := &domain.Reaction{ID: "rx-1", PostID: testPostID, UserID: testUserID, Direction: domain.DirectionLike}

	repo.On("Submit", ctx, testPostID, testUserID, domain.DirectionLike).
		Return(post, reaction, domain.ReactionFirst, nil)
	cache.On("InvalidatePost", ctx, testPostID).Return(nil)

	result, err := svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    testPostID,
		UserID:    testUserID,
		Direction: "like",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReactionFirst, result.Outcome)
	assert.Equal(t, post, result.Post)
	assert.Equal(t, reaction, result.Reaction)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubmitReaction_Flip(t *testing.T) {
	repo := new(mockReactionRepository)
	cache := new(mockPostCache)
	svc := newReactionTestService(repo, cache)
	ctx := context.Background()

	post := likedPost(0, 1, domain.DirectionDislike)
	reaction := &domain.Reaction{ID: "rx-1", PostID: testPostID, UserID: testUserID, Direction: domain.DirectionDislike}

	repo.On("Submit", ctx, testPostID, testUserID, domain.DirectionDislike).
		Return(post, reaction, domain.ReactionFlip, nil)
	cache.On("InvalidatePost", ctx, testPostID).Return(nil)

	result, err := svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    testPostID,
		UserID:    testUserID,
		Direction: "dislike",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReactionFlip, result.Outcome)
	cache.AssertExpectations(t)
}

func TestSubmitReaction_NoopSkipsInvalidation(t *testing.T) {
	repo := new(mockReactionRepository)
	cache := new(mockPostCache)
	svc := newReactionTestService(repo, cache)
	ctx := context.Background()

	post := likedPost(1, 0, domain.DirectionLike)
	reaction := &domain.Reaction{ID: "rx-1", PostID: testPostID, UserID: testUserID, Direction: domain.DirectionLike}

	repo.On("Submit", ctx, testPostID, testUserID, domain.DirectionLike).
		Return(post, reaction, domain.ReactionNoop, nil)

	result, err := svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    testPostID,
		UserID:    testUserID,
		Direction: "like",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReactionNoop, result.Outcome)

	// A no-op changes nothing, so the cached post stays valid.
	cache.AssertNotCalled(t, "InvalidatePost", mock.Anything, mock.Anything)
}

func TestSubmitReaction_InvalidDirection(t *testing.T) {
	repo := new(mockReactionRepository)
	svc := newReactionTestService(repo, nil)

	for _, direction := range []string{"", "love", "LIKE", "upvote"} {
		_, err := svc.SubmitReaction(context.Background(), &SubmitReactionInput{
			PostID:    testPostID,
			UserID:    testUserID,
			Direction: direction,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "direction %q", direction)
	}

	repo.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReaction_InvalidIDs(t *testing.T) {
	repo := new(mockReactionRepository)
	svc := newReactionTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    "my-post",
		UserID:    testUserID,
		Direction: "like",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    testPostID,
		UserID:    "me",
		Direction: "like",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmitReaction_PostNotFound(t *testing.T) {
	repo := new(mockReactionRepository)
	svc := newReactionTestService(repo, nil)
	ctx := context.Background()

	repo.On("Submit", ctx, testPostID, testUserID, domain.DirectionLike).
		Return(nil, nil, domain.ReactionOutcome(0), apperrors.NotFound("blog post", testPostID))

	_, err := svc.SubmitReaction(ctx, &SubmitReactionInput{
		PostID:    testPostID,
		UserID:    testUserID,
		Direction: "like",
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
