package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minshop/minshop-backend/api/controllers"
	"github.com/minshop/minshop-backend/api/middleware"
	"github.com/minshop/minshop-backend/internal/auth"
	"github.com/minshop/minshop-backend/internal/cart"
	"github.com/minshop/minshop-backend/internal/feedback"
	"github.com/minshop/minshop-backend/internal/orders"
	"github.com/minshop/minshop-backend/internal/products"
	"github.com/minshop/minshop-backend/internal/reviews"
	"github.com/minshop/minshop-backend/internal/users"
	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db"
	"github.com/minshop/minshop-backend/pkg/idempotency"
	"github.com/minshop/minshop-backend/pkg/logger"
	"github.com/minshop/minshop-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	Idempotency idempotency.Store

	Auth     auth.Service
	Users    users.Service
	Products products.Service
	Reviews  reviews.Service
	Cart     cart.Service
	Orders   orders.Service
	Feedback feedback.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(deps.Config.CORS),
	)

	requireAuth := middleware.Auth(deps.Auth, logg)
	optionalAuth := middleware.OptionalAuth(deps.Auth, logg)
	idem := middleware.Idempotency(deps.Idempotency, deps.Config.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, logg))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(idem).Post("/register", controllers.Register(deps.Auth, logg))
			r.Post("/login", controllers.Login(deps.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.Me(logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Get("/{productId}/reviews", controllers.ReviewList(deps.Reviews, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Get("/mine", controllers.ProductListMine(deps.Products, logg))
				r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
				r.Patch("/{productId}/status", controllers.ProductSetStatus(deps.Products, logg))
				r.Post("/{productId}/reviews", controllers.ReviewAdd(deps.Reviews, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Put("/", controllers.CartReplace(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(idem).Post("/", controllers.OrderPlace(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
		})

		r.With(requireAuth).Post("/favorites/toggle", controllers.FavoriteToggle(deps.Users, logg))
		r.With(optionalAuth).Post("/feedback", controllers.FeedbackSubmit(deps.Feedback, logg))
	})

	return r
}
