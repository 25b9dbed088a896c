package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autohaus-digital/backend/api/controllers"
	"github.com/autohaus-digital/backend/api/middleware"
	cartsvc "github.com/autohaus-digital/backend/internal/cart"
	discountsvc "github.com/autohaus-digital/backend/internal/discounts"
	ordersvc "github.com/autohaus-digital/backend/internal/orders"
	"github.com/autohaus-digital/backend/pkg/config"
	"github.com/autohaus-digital/backend/pkg/db"
	"github.com/autohaus-digital/backend/pkg/logger"
	"github.com/autohaus-digital/backend/pkg/metrics"
	"github.com/autohaus-digital/backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisClient *redis.Client

	Registry        *prometheus.Registry
	HTTPMetrics     *metrics.HTTPMetrics
	CheckoutMetrics *metrics.CheckoutMetrics

	CartService     cartsvc.Service
	DiscountService discountsvc.Service
	DiscountRepo    discountsvc.Repository
	OrderService    ordersvc.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisClient))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.RedisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/items", controllers.CartAddProduct(deps.CartService, logg))
			r.Patch("/items/{productId}", controllers.CartSetQuantity(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			r.Post("/vehicles", controllers.CartAddVehicle(deps.CartService, logg))
			r.Delete("/vehicles/{vehicleId}", controllers.CartRemoveVehicle(deps.CartService, logg))
			r.Post("/reconcile", controllers.CartReconcile(deps.CartService, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/validate", controllers.CartApplyDiscount(deps.CartService, deps.DiscountService, deps.CheckoutMetrics, logg))
			r.Delete("/", controllers.CartRemoveDiscount(deps.CartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.OrderService, deps.CheckoutMetrics, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrderService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(deps.OrderService, logg))
		})

		r.Route("/discount-codes", func(r chi.Router) {
			r.Get("/", controllers.AdminDiscountList(deps.DiscountRepo, logg))
			r.Post("/", controllers.AdminDiscountCreate(deps.DiscountRepo, logg))
			r.Patch("/{codeId}", controllers.AdminDiscountUpdate(deps.DiscountRepo, logg))
			r.Delete("/{codeId}", controllers.AdminDiscountDelete(deps.DiscountRepo, logg))
		})
	})

	return r
}
