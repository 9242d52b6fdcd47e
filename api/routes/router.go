package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/controllers"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/middleware"
	buyboxsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	creditsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	repricingsvc "github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/repricing"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/config"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	buyboxService buyboxsvc.Service,
	repricingService repricingsvc.Service,
	creditService creditsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/buybox", func(r chi.Router) {
			r.Get("/", controllers.ListBuyBoxHistories(buyboxService, logg))
			r.Post("/monitor", controllers.StartBuyBoxMonitoring(buyboxService, logg))
			r.Get("/{productId}/{marketplace}", controllers.GetBuyBoxHistory(buyboxService, logg))
			r.Delete("/{productId}/{marketplace}", controllers.StopBuyBoxMonitoring(buyboxService, logg))
		})

		r.Route("/v1/repricing", func(r chi.Router) {
			r.Route("/rules", func(r chi.Router) {
				r.Get("/", controllers.ListRepricingRules(repricingService, logg))
				r.Post("/", controllers.CreateRepricingRule(repricingService, logg))
				r.Get("/{ruleId}", controllers.GetRepricingRule(repricingService, logg))
				r.Put("/{ruleId}", controllers.UpdateRepricingRule(repricingService, logg))
				r.Delete("/{ruleId}", controllers.DeleteRepricingRule(repricingService, logg))
				r.Post("/{ruleId}/execute", controllers.ExecuteRepricingRule(repricingService, logg))
				r.Get("/{ruleId}/events", controllers.ListRuleEvents(repricingService, logg))
			})
			r.Route("/events", func(r chi.Router) {
				r.Get("/recent", controllers.ListRecentEvents(repricingService, logg))
				r.Get("/date-range", controllers.ListEventsByDateRange(repricingService, logg))
			})
			r.Get("/products/{productId}/events", controllers.ListProductEvents(repricingService, logg))
			r.Get("/marketplaces/{marketplace}/events", controllers.ListMarketplaceEvents(repricingService, logg))
		})

		r.Route("/v1/credits", func(r chi.Router) {
			r.Get("/balance", controllers.GetCreditBalance(creditService, logg))
			r.Get("/transactions", controllers.ListCreditTransactions(creditService, logg))
		})
	})

	return r
}
