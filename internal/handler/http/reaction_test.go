package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/service"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

const (
	reactionPostID = "550e8400-e29b-41d4-a716-446655440010"
	reactionUserID = "550e8400-e29b-41d4-a716-446655440011"
)

// =============================================================================
// Mock ReactionRepository
// =============================================================================

type mockReactionRepo struct {
	mock.Mock
}

func (m *mockReactionRepo) Submit(ctx context.Context, postID, userID string, direction domain.Direction) (*domain.BlogPost, *domain.Reaction, domain.ReactionOutcome, error) {
	args := m.Called(ctx, postID, userID, direction)
	var post *domain.BlogPost
	if args.Get(0) != nil {
		post = args.Get(0).(*domain.BlogPost)
	}
	var reaction *domain.Reaction
	if args.Get(1) != nil {
		reaction = args.Get(1).(*domain.Reaction)
	}
	return post, reaction, args.Get(2).(domain.ReactionOutcome), args.Error(3)
}

func (m *mockReactionRepo) EraseUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

func reactionTestHandler(repo *mockReactionRepo) *ReactionHandler {
	logger := productTestLogger()
	svc := service.NewReactionService(repo, nil, productTestEventProducer(), logger)
	return NewReactionHandler(svc, logger)
}

func reactionRouter(handler *ReactionHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/posts/{postId}/reactions", func(r chi.Router) {
		r.Post("/", handler.SubmitReaction)
	})
	return r
}

func reactedPost(likes, dislikes int64, last domain.Direction) *domain.BlogPost {
	return &domain.BlogPost{
		ID:           reactionPostID,
		Title:        "Why We Rate Things",
		Slug:         "why-we-rate-things",
		LikeCount:    likes,
		DislikeCount: dislikes,
		LastReaction: &last,
	}
}

func submitReaction(t *testing.T, router *chi.Mux, direction string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(SubmitReactionRequest{Direction: direction})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+reactionPostID+"/reactions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", reactionUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// POST /api/v1/posts/{postId}/reactions - SubmitReaction
// =============================================================================

func TestSubmitReaction_FirstLikeCreated(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	reaction := &domain.Reaction{ID: "react-1", PostID: reactionPostID, UserID: reactionUserID, Direction: domain.DirectionLike}
	repo.On("Submit", mock.Anything, reactionPostID, reactionUserID, domain.DirectionLike).
		Return(reactedPost(1, 0, domain.DirectionLike), reaction, domain.ReactionFirst, nil)

	rec := submitReaction(t, router, "like")

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "created", data["outcome"])

	post, ok := data["post"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 1, post["like_count"], 0.001)
	assert.InDelta(t, 0, post["dislike_count"], 0.001)

	repo.AssertExpectations(t)
}

func TestSubmitReaction_FlipReturnsOK(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	reaction := &domain.Reaction{ID: "react-1", PostID: reactionPostID, UserID: reactionUserID, Direction: domain.DirectionDislike}
	repo.On("Submit", mock.Anything, reactionPostID, reactionUserID, domain.DirectionDislike).
		Return(reactedPost(0, 1, domain.DirectionDislike), reaction, domain.ReactionFlip, nil)

	rec := submitReaction(t, router, "dislike")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProductResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "changed", data["outcome"])
	repo.AssertExpectations(t)
}

func TestSubmitReaction_NoopReturnsOK(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	reaction := &domain.Reaction{ID: "react-1", PostID: reactionPostID, UserID: reactionUserID, Direction: domain.DirectionLike}
	repo.On("Submit", mock.Anything, reactionPostID, reactionUserID, domain.DirectionLike).
		Return(reactedPost(1, 0, domain.DirectionLike), reaction, domain.ReactionNoop, nil)

	rec := submitReaction(t, router, "like")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProductResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "unchanged", data["outcome"])
	repo.AssertExpectations(t)
}

func TestSubmitReaction_MissingUserHeader(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	b, _ := json.Marshal(SubmitReactionRequest{Direction: "like"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+reactionPostID+"/reactions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "X-User-ID")
	repo.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReaction_InvalidDirection(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	for _, direction := range []string{"", "love", "LIKE", "upvote"} {
		rec := submitReaction(t, router, direction)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "direction %q", direction)
		resp := decodeProductResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code, "direction %q", direction)
	}

	repo.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReaction_MalformedBody(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+reactionPostID+"/reactions", bytes.NewReader([]byte(`{direction`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", reactionUserID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestSubmitReaction_PostNotFound(t *testing.T) {
	repo := new(mockReactionRepo)
	router := reactionRouter(reactionTestHandler(repo))

	repo.On("Submit", mock.Anything, reactionPostID, reactionUserID, domain.DirectionLike).
		Return(nil, nil, domain.ReactionOutcome(0), apperrors.NotFound("blog post", reactionPostID))

	rec := submitReaction(t, router, "like")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	repo.AssertExpectations(t)
}
