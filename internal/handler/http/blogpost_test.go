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
	"github.com/utafrali/StorefrontGo/internal/repository"
	"github.com/utafrali/StorefrontGo/internal/service"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

const (
	blogPostID   = "550e8400-e29b-41d4-a716-446655440020"
	blogAuthorID = "550e8400-e29b-41d4-a716-446655440021"
)

// =============================================================================
// Mock BlogPostRepository
// =============================================================================

type mockBlogPostRepo struct {
	mock.Mock
}

func (m *mockBlogPostRepo) Create(ctx context.Context, post *domain.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockBlogPostRepo) GetByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockBlogPostRepo) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockBlogPostRepo) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBlogPostRepo) List(ctx context.Context, filter repository.PostFilter) ([]domain.BlogPost, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BlogPost), args.Int(1), args.Error(2)
}

func (m *mockBlogPostRepo) Update(ctx context.Context, post *domain.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockBlogPostRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

func blogPostTestHandler(repo *mockBlogPostRepo) *BlogPostHandler {
	logger := productTestLogger()
	svc := service.NewBlogPostService(repo, nil, productTestEventProducer(), logger)
	return NewBlogPostHandler(svc, logger)
}

func blogPostRouter(handler *BlogPostHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Get("/", handler.ListBlogPosts)
		r.Post("/", handler.CreateBlogPost)
		r.Get("/{idOrSlug}", handler.GetBlogPost)
		r.Put("/{id}", handler.UpdateBlogPost)
		r.Delete("/{id}", handler.DeleteBlogPost)
	})
	return r
}

func samplePost() *domain.BlogPost {
	return &domain.BlogPost{
		ID:       blogPostID,
		Title:    "Why We Rate Things",
		Slug:     "why-we-rate-things",
		Body:     "A long look at aggregate counters.",
		AuthorID: blogAuthorID,
		Status:   domain.PostStatusDraft,
	}
}

// =============================================================================
// POST /api/v1/posts - CreateBlogPost
// =============================================================================

func TestCreateBlogPostHandler_Created(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BlogPost")).Return(nil)

	b, _ := json.Marshal(CreateBlogPostRequest{Title: "Why We Rate Things", Body: "A long look at aggregate counters."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", blogAuthorID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.Nil(t, resp.Error)

	post, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "why-we-rate-things", post["slug"])
	assert.Equal(t, "draft", post["status"])
	repo.AssertExpectations(t)
}

func TestCreateBlogPostHandler_MissingUserHeader(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	b, _ := json.Marshal(CreateBlogPostRequest{Title: "Untitled", Body: "text"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBlogPostHandler_MissingTitle(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader([]byte(`{"body": "text only"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", blogAuthorID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// =============================================================================
// GET /api/v1/posts/{idOrSlug} - GetBlogPost
// =============================================================================

func TestGetBlogPostHandler_ByID(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("GetByID", mock.Anything, blogPostID).Return(samplePost(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+blogPostID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestGetBlogPostHandler_BySlug(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("GetBySlug", mock.Anything, "why-we-rate-things").Return(samplePost(), nil)
	repo.On("IncrementViews", mock.Anything, blogPostID).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/why-we-rate-things", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestGetBlogPostHandler_NotFound(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("GetBySlug", mock.Anything, "missing-post").
		Return(nil, apperrors.NotFound("blog post", "missing-post"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing-post", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// GET /api/v1/posts - ListBlogPosts
// =============================================================================

func TestListBlogPostsHandler_FiltersByStatus(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.PostFilter) bool {
		return f.Status != nil && *f.Status == "published" && f.Page == 1 && f.PerPage == 20
	})).Return([]domain.BlogPost{*samplePost()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?status=published", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListBlogPostsHandler_RejectsUnknownStatus(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?status=archived", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListBlogPostsHandler_RejectsBadPagination(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	for _, query := range []string{"page=0", "page=abc", "per_page=0", "per_page=101"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?"+query, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s", query)
	}
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

// =============================================================================
// PUT /api/v1/posts/{id} - UpdateBlogPost
// =============================================================================

func TestUpdateBlogPostHandler_Publish(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("GetByID", mock.Anything, blogPostID).Return(samplePost(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.BlogPost) bool {
		return p.Status == domain.PostStatusPublished
	})).Return(nil)

	body := []byte(`{"status": "published"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/"+blogPostID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateBlogPostHandler_RejectsUnknownStatus(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	body := []byte(`{"status": "retired"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/"+blogPostID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeProductResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// =============================================================================
// DELETE /api/v1/posts/{id} - DeleteBlogPost
// =============================================================================

func TestDeleteBlogPostHandler_OK(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	repo.On("GetByID", mock.Anything, blogPostID).Return(samplePost(), nil)
	repo.On("Delete", mock.Anything, blogPostID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/"+blogPostID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProductResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "deleted", data["status"])
	repo.AssertExpectations(t)
}

func TestDeleteBlogPostHandler_InvalidID(t *testing.T) {
	repo := new(mockBlogPostRepo)
	router := blogPostRouter(blogPostTestHandler(repo))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
