package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
	"github.com/utafrali/StorefrontGo/pkg/validator"
	"github.com/utafrali/StorefrontGo/internal/service"
)

// RatingHandler handles HTTP requests for product rating endpoints.
type RatingHandler struct {
	service *service.RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating HTTP handler.
func NewRatingHandler(svc *service.RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SubmitRatingRequest is the JSON request body for submitting a rating.
type SubmitRatingRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

// --- Handlers ---

// SubmitRating handles POST /api/v1/products/{productId}/ratings
// @Summary Rate a product
// @Description Records a one-to-five star rating. Each user may rate a product once;
// a repeat submission is rejected with 409. Requires X-User-ID header.
// @Tags ratings
// @Accept json
// @Produce json
// @Param productId path string true "Product UUID"
// @Param X-User-ID header string true "Authenticated user UUID"
// @Param request body SubmitRatingRequest true "Rating to submit"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/ratings [post]
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id is required"},
		})
		return
	}

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitRatingRequest
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

	input := &service.SubmitRatingInput{
		ProductID: productID,
		UserID:    userID,
		Value:     req.Value,
	}

	product, rating, err := h.service.SubmitRating(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]any{
		"rating":  rating,
		"product": product,
	}})
}

// ListRatings handles GET /api/v1/products/{productId}/ratings
// @Summary List product ratings
// @Description Returns paginated ratings for a product, newest first, with the aggregate summary
// @Tags ratings
// @Produce json
// @Param productId path string true "Product UUID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/ratings [get]
func (h *RatingHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id is required"},
		})
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.service.ListRatings(r.Context(), productID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":        result.Ratings,
		"summary":     result.Summary,
		"total_count": result.TotalCount,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}
