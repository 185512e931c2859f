package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/event"
	"github.com/utafrali/StorefrontGo/internal/repository"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	pkgkafka "github.com/utafrali/StorefrontGo/pkg/kafka"
)

const testAuthorID = "5a8d3f21-7c6b-4e90-b2d4-8f1e6a0c9b35"

// --- Mock Repository ---

type mockBlogPostRepository struct {
	mock.Mock
}

func (m *mockBlogPostRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockBlogPostRepository) GetByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockBlogPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockBlogPostRepository) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBlogPostRepository) List(ctx context.Context, filter repository.PostFilter) ([]domain.BlogPost, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BlogPost), args.Int(1), args.Error(2)
}

func (m *mockBlogPostRepository) Update(ctx context.Context, post *domain.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockBlogPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newBlogPostTestService(repo *mockBlogPostRepository, cache PostCache) *BlogPostService {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewBlogPostService(repo, cache, producer, logger)
}

// --- Tests ---

func TestCreateBlogPost_Success(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.BlogPost")).Return(nil)

	post, err := svc.CreateBlogPost(ctx, &CreateBlogPostInput{
		Title:    "Why We Rate Things",
		Body:     "Long form content.",
		AuthorID: testAuthorID,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Why We Rate Things", post.Title)
	assert.Equal(t, "why-we-rate-things", post.Slug)
	assert.Equal(t, testAuthorID, post.AuthorID)
	assert.Equal(t, domain.PostStatusDraft, post.Status)
	assert.Zero(t, post.LikeCount)
	assert.Zero(t, post.DislikeCount)
	assert.Nil(t, post.LastReaction)

	repo.AssertExpectations(t)
}

func TestCreateBlogPost_MissingFields(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateBlogPost(ctx, &CreateBlogPostInput{Body: "text", AuthorID: testAuthorID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateBlogPost(ctx, &CreateBlogPostInput{Title: "Hi", AuthorID: testAuthorID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateBlogPost(ctx, &CreateBlogPostInput{Title: "Hi", Body: "text", AuthorID: "editor"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetBlogPost_CacheHit(t *testing.T) {
	repo := new(mockBlogPostRepository)
	cache := new(mockPostCache)
	svc := newBlogPostTestService(repo, cache)
	ctx := context.Background()

	cached := &domain.BlogPost{ID: testPostID, Title: "Cached"}
	cache.On("GetPost", ctx, testPostID).Return(cached, true, nil)

	post, err := svc.GetBlogPost(ctx, testPostID)

	require.NoError(t, err)
	assert.Equal(t, cached, post)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetBlogPost_CacheMissFallsThrough(t *testing.T) {
	repo := new(mockBlogPostRepository)
	cache := new(mockPostCache)
	svc := newBlogPostTestService(repo, cache)
	ctx := context.Background()

	stored := &domain.BlogPost{ID: testPostID, Title: "Stored"}
	cache.On("GetPost", ctx, testPostID).Return(nil, false, nil)
	repo.On("GetByID", ctx, testPostID).Return(stored, nil)
	cache.On("SetPost", ctx, stored).Return(nil)

	post, err := svc.GetBlogPost(ctx, testPostID)

	require.NoError(t, err)
	assert.Equal(t, stored, post)
	cache.AssertExpectations(t)
}

func TestGetBlogPostBySlug_CountsView(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	stored := &domain.BlogPost{ID: testPostID, Title: "Stored", Slug: "stored", ViewCount: 7}
	repo.On("GetBySlug", ctx, "stored").Return(stored, nil)
	repo.On("IncrementViews", ctx, testPostID).Return(nil)

	post, err := svc.GetBlogPostBySlug(ctx, "stored")

	require.NoError(t, err)
	assert.Equal(t, int64(8), post.ViewCount)
	repo.AssertExpectations(t)
}

func TestGetBlogPostBySlug_ViewCountFailureIsNonFatal(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	stored := &domain.BlogPost{ID: testPostID, Title: "Stored", Slug: "stored", ViewCount: 7}
	repo.On("GetBySlug", ctx, "stored").Return(stored, nil)
	repo.On("IncrementViews", ctx, testPostID).Return(errors.New("connection refused"))

	post, err := svc.GetBlogPostBySlug(ctx, "stored")

	require.NoError(t, err)
	assert.Equal(t, int64(7), post.ViewCount)
}

func TestListBlogPosts_InvalidStatus(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)

	status := "archived"
	_, _, err := svc.ListBlogPosts(context.Background(), repository.PostFilter{Status: &status})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListBlogPosts_ClampsPagination(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	expected := repository.PostFilter{Page: 1, PerPage: 100}
	repo.On("List", ctx, expected).Return([]domain.BlogPost{}, 0, nil)

	_, _, err := svc.ListBlogPosts(ctx, repository.PostFilter{Page: -2, PerPage: 9999})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateBlogPost_PublishAndSlugRegen(t *testing.T) {
	repo := new(mockBlogPostRepository)
	cache := new(mockPostCache)
	svc := newBlogPostTestService(repo, cache)
	ctx := context.Background()

	existing := &domain.BlogPost{
		ID:       testPostID,
		Title:    "Draft Title",
		Slug:     "draft-title",
		Body:     "text",
		AuthorID: testAuthorID,
		Status:   domain.PostStatusDraft,
	}

	repo.On("GetByID", ctx, testPostID).Return(existing, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.BlogPost")).Return(nil)
	cache.On("InvalidatePost", ctx, testPostID).Return(nil)

	post, err := svc.UpdateBlogPost(ctx, testPostID, &UpdateBlogPostInput{
		Title:  strPtr("Final Title"),
		Status: strPtr(domain.PostStatusPublished),
	})

	require.NoError(t, err)
	assert.Equal(t, "Final Title", post.Title)
	assert.Equal(t, "final-title", post.Slug)
	assert.Equal(t, domain.PostStatusPublished, post.Status)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpdateBlogPost_InvalidStatus(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	existing := &domain.BlogPost{ID: testPostID, Title: "T", Slug: "t", Body: "b"}
	repo.On("GetByID", ctx, testPostID).Return(existing, nil)

	_, err := svc.UpdateBlogPost(ctx, testPostID, &UpdateBlogPostInput{Status: strPtr("retired")})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteBlogPost_Success(t *testing.T) {
	repo := new(mockBlogPostRepository)
	cache := new(mockPostCache)
	svc := newBlogPostTestService(repo, cache)
	ctx := context.Background()

	existing := &domain.BlogPost{ID: testPostID, Title: "T", Slug: "t"}
	repo.On("GetByID", ctx, testPostID).Return(existing, nil)
	repo.On("Delete", ctx, testPostID).Return(nil)
	cache.On("InvalidatePost", ctx, testPostID).Return(nil)

	err := svc.DeleteBlogPost(ctx, testPostID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestDeleteBlogPost_NotFound(t *testing.T) {
	repo := new(mockBlogPostRepository)
	svc := newBlogPostTestService(repo, nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, testPostID).Return(nil, apperrors.NotFound("blog post", testPostID))

	err := svc.DeleteBlogPost(ctx, testPostID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
