package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/validator"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/service"
)

// ReactionHandler handles HTTP requests for blog post reaction endpoints.
type ReactionHandler struct {
	service *service.ReactionService
	logger  *slog.Logger
}

// NewReactionHandler creates a new reaction HTTP handler.
func NewReactionHandler(svc *service.ReactionService, logger *slog.Logger) *ReactionHandler {
	return &ReactionHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SubmitReactionRequest is the JSON request body for submitting a reaction.
type SubmitReactionRequest struct {
	Direction string `json:"direction" validate:"required,oneof=like dislike"`
}

// --- Handlers ---

// SubmitReaction handles POST /api/v1/posts/{postId}/reactions
// @Summary React to a blog post
// @Description Records a like or dislike. Resubmitting the current direction is a
// no-op; submitting the opposite direction flips the reaction. Requires X-User-ID header.
// @Tags reactions
// @Accept json
// @Produce json
// @Param postId path string true "Post UUID"
// @Param X-User-ID header string true "Authenticated user UUID"
// @Param request body SubmitReactionRequest true "Reaction to submit"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/posts/{postId}/reactions [post]
func (h *ReactionHandler) SubmitReaction(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")
	if postID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "post id is required"},
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

	var req SubmitReactionRequest
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

	input := &service.SubmitReactionInput{
		PostID:    postID,
		UserID:    userID,
		Direction: req.Direction,
	}

	result, err := h.service.SubmitReaction(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Outcome == domain.ReactionFirst {
		status = http.StatusCreated
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: map[string]any{
		"outcome":  result.Outcome.String(),
		"reaction": result.Reaction,
		"post":     result.Post,
	}})
}
