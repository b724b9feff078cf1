package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pramodsinghlodhi/masterprint-backend/api/controllers"
	"github.com/pramodsinghlodhi/masterprint-backend/api/middleware"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/assignments"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/deliveries"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/orders"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/pricing"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/config"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/logger"
	pkgredis "github.com/pramodsinghlodhi/masterprint-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	promRegistry *prometheus.Registry,
	ordersService orders.Service,
	agentsService agents.Service,
	assignmentsService assignments.Service,
	deliveriesService deliveries.Service,
	pricingService pricing.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Post("/bulk-assign", controllers.BulkAssignAgent(assignmentsService, logg))
			r.Post("/bulk-unassign", controllers.BulkUnassignAgent(assignmentsService, logg))
			r.Get("/number/{orderNumber}", controllers.OrderByNumber(ordersService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersService, logg))
				r.Put("/status", controllers.UpdateOrderStatus(assignmentsService, logg))
				r.Post("/assign", controllers.AssignAgent(assignmentsService, logg))
				r.Post("/unassign", controllers.UnassignAgent(assignmentsService, logg))
			})
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.ListAgents(agentsService, logg))
			r.Post("/", controllers.RegisterAgent(agentsService, logg))
			r.Route("/{agentId}", func(r chi.Router) {
				r.Get("/", controllers.AgentDetail(agentsService, logg))
				r.Get("/earnings", controllers.AdminAgentEarnings(deliveriesService, logg))
				r.Post("/approve", controllers.ApproveAgent(agentsService, logg))
				r.Post("/suspend", controllers.SuspendAgent(agentsService, logg))
				r.Post("/reactivate", controllers.ReactivateAgent(agentsService, logg))
			})
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Get("/resolve", controllers.ResolveDeliveryPrice(pricingService, logg))
			r.Route("/rules", func(r chi.Router) {
				r.Get("/", controllers.ListPricingRules(pricingService, logg))
				r.Post("/", controllers.CreatePricingRule(pricingService, logg))
				r.Put("/{ruleId}", controllers.UpdatePricingRule(pricingService, logg))
				r.Delete("/{ruleId}", controllers.DeletePricingRule(pricingService, logg))
			})
		})
	})

	r.Route("/api/agent/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("agent", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/earnings", controllers.AgentEarnings(deliveriesService, logg))
		r.Post("/orders/{orderId}/complete", controllers.CompleteDelivery(deliveriesService, logg))
	})

	return r
}
