package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/StorefrontGo/pkg/health"
	"github.com/utafrali/StorefrontGo/pkg/middleware"
	"github.com/utafrali/StorefrontGo/internal/repository/postgres"
	"github.com/utafrali/StorefrontGo/internal/service"
)

// RouterConfig holds the deployment-specific knobs for the HTTP router.
type RouterConfig struct {
	ServiceName        string
	Environment        string
	CORSAllowedOrigins []string
	PprofAllowedCIDRs  []string
}

// Services bundles the service dependencies for the router.
type Services struct {
	Product  *service.ProductService
	Rating   *service.RatingService
	BlogPost *service.BlogPostService
	Reaction *service.ReactionService
}

// NewRouter creates a chi router with all storefront routes registered.
// Catalog and category mutations require an admin JWT; end-user actions
// (ratings, reactions, post authoring) identify the actor via the X-User-ID
// header injected by the API gateway.
func NewRouter(
	cfg RouterConfig,
	svcs Services,
	categoryRepo *postgres.CategoryRepository,
	healthHandler *health.Handler,
	validateToken middleware.TokenValidator,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	requireAdmin := func(r chi.Router) {
		r.Use(middleware.Auth(validateToken))
		r.Use(middleware.RequireRole("admin"))
	}

	// Product API endpoints
	productHandler := NewProductHandler(svcs.Product, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/", productHandler.ListProducts)
			r.Get("/{idOrSlug}", productHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			requireAdmin(r)

			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	// Rating API endpoints (nested under products)
	ratingHandler := NewRatingHandler(svcs.Rating, logger)

	r.Route("/api/v1/products/{productId}/ratings", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", ratingHandler.ListRatings)
		r.Post("/", ratingHandler.SubmitRating)
	})

	// Blog post API endpoints
	blogPostHandler := NewBlogPostHandler(svcs.BlogPost, logger)

	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", blogPostHandler.ListBlogPosts)
		r.Get("/{idOrSlug}", blogPostHandler.GetBlogPost)
		r.Post("/", blogPostHandler.CreateBlogPost)
		r.Put("/{id}", blogPostHandler.UpdateBlogPost)
		r.Delete("/{id}", blogPostHandler.DeleteBlogPost)
	})

	// Reaction API endpoints (nested under posts)
	reactionHandler := NewReactionHandler(svcs.Reaction, logger)

	r.Route("/api/v1/posts/{postId}/reactions", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", reactionHandler.SubmitReaction)
	})

	// Category API endpoints
	categoryHandler := NewCategoryHandler(categoryRepo, logger)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(300))

			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{id}", categoryHandler.GetCategory)
		})

		r.Group(func(r chi.Router) {
			requireAdmin(r)

			r.Post("/", categoryHandler.CreateCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})
	})

	return r
}
