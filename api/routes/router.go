package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/spacerent-backend/api/controllers"
	commissioncontrollers "github.com/angelmondragon/spacerent-backend/api/controllers/commissions"
	paymentcontrollers "github.com/angelmondragon/spacerent-backend/api/controllers/payments"
	webhookcontrollers "github.com/angelmondragon/spacerent-backend/api/controllers/webhooks"
	"github.com/angelmondragon/spacerent-backend/api/middleware"
	stripewebhook "github.com/angelmondragon/spacerent-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/spacerent-backend/pkg/config"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
	"github.com/angelmondragon/spacerent-backend/pkg/redis"
	"github.com/angelmondragon/spacerent-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	paymentsService paymentcontrollers.Service,
	commissionService commissioncontrollers.Service,
	stripeClient *stripe.Client,
	stripeWebhookService webhookcontrollers.StripeWebhookService,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisP,
		}))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	if stripeClient != nil {
		r.Route("/api/v1/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/commission", paymentcontrollers.Quote(paymentsService, logg))
			r.Post("/payments/pix", paymentcontrollers.CreatePix(paymentsService, logg))
			r.Post("/payments/card", paymentcontrollers.CreateCard(paymentsService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/commissions", func(r chi.Router) {
			r.Get("/", commissioncontrollers.Overview(commissionService, logg))
			r.Put("/global", commissioncontrollers.SaveGlobal(commissionService, logg))
			r.Put("/plans", commissioncontrollers.ReplacePlans(commissionService, logg))
			r.Put("/spaces", commissioncontrollers.ReplaceSpaces(commissionService, logg))
		})
	})

	return r
}
