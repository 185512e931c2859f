package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/validator"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/repository"
	"github.com/utafrali/StorefrontGo/internal/service"
)

// BlogPostHandler handles HTTP requests for blog post endpoints.
type BlogPostHandler struct {
	service *service.BlogPostService
	logger  *slog.Logger
}

// NewBlogPostHandler creates a new blog post HTTP handler.
func NewBlogPostHandler(svc *service.BlogPostService, logger *slog.Logger) *BlogPostHandler {
	return &BlogPostHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBlogPostRequest is the JSON request body for creating a blog post.
type CreateBlogPostRequest struct {
	Title      string  `json:"title" validate:"required,min=1,max=500"`
	Body       string  `json:"body" validate:"required"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateBlogPostRequest is the JSON request body for updating a blog post.
type UpdateBlogPostRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=500"`
	Body       *string `json:"body" validate:"omitempty,min=1"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	Status     *string `json:"status" validate:"omitempty,oneof=draft published"`
}

// --- Handlers ---

// ListBlogPosts handles GET /api/v1/posts
// @Summary List blog posts
// @Description Returns paginated list of blog posts with optional filtering
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Param category_id query string false "Filter by category UUID"
// @Param author_id query string false "Filter by author UUID"
// @Param status query string false "Filter by status" Enums(draft,published)
// @Param search query string false "Full-text search query"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/posts [get]
func (h *BlogPostHandler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	filter := repository.PostFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := r.URL.Query().Get("author_id"); v != "" {
		filter.AuthorID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if !domain.IsValidPostStatus(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "status must be one of: draft, published"},
			})
			return
		}
		filter.Status = &v
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}

	posts, total, err := h.service.ListBlogPosts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(posts, total, filter.Page, filter.PerPage))
}

// GetBlogPost handles GET /api/v1/posts/{idOrSlug}
// It accepts both a UUID (post ID) and a slug for lookup.
// @Summary Get blog post by ID or slug
// @Description Returns a blog post with its reaction counters. Accepts both UUID and URL slug.
// @Tags posts
// @Produce json
// @Param idOrSlug path string true "Post UUID or URL slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/posts/{idOrSlug} [get]
func (h *BlogPostHandler) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "post id or slug is required"},
		})
		return
	}

	var (
		post *domain.BlogPost
		err  error
	)

	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		post, err = h.service.GetBlogPost(r.Context(), idOrSlug)
	} else {
		post, err = h.service.GetBlogPostBySlug(r.Context(), idOrSlug)
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: post})
}

// CreateBlogPost handles POST /api/v1/posts
// @Summary Create a blog post
// @Description Creates a new blog post in draft status. Requires X-User-ID header.
// @Tags posts
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated author UUID"
// @Param request body CreateBlogPostRequest true "Post to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/posts [post]
func (h *BlogPostHandler) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	authorID := r.Header.Get("X-User-ID")
	if authorID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateBlogPostInput{
		Title:      req.Title,
		Body:       req.Body,
		AuthorID:   authorID,
		CategoryID: req.CategoryID,
	}

	post, err := h.service.CreateBlogPost(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: post})
}

// UpdateBlogPost handles PUT /api/v1/posts/{id}
// @Summary Update a blog post
// @Description Partially updates a blog post — all fields are optional
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post UUID"
// @Param request body UpdateBlogPostRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/posts/{id} [put]
func (h *BlogPostHandler) UpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateBlogPostInput{
		Title:      req.Title,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}

	post, err := h.service.UpdateBlogPost(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: post})
}

// DeleteBlogPost handles DELETE /api/v1/posts/{id}
// @Summary Delete a blog post
// @Description Deletes a blog post and its reactions by UUID
// @Tags posts
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/posts/{id} [delete]
func (h *BlogPostHandler) DeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBlogPost(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
