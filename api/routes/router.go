package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OmkarVetal12/synlawn/api/controllers"
	"github.com/OmkarVetal12/synlawn/api/middleware"
	"github.com/OmkarVetal12/synlawn/pkg/config"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/redis"
)

// Deps carries everything the HTTP surface is built from. Idempotency and
// Redis are optional; without them confirm requests are never replayed.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Dependency
	Redis        controllers.Dependency
	Idempotency  redis.IdempotencyStore
	Workflows    controllers.WorkflowRegistry
	Quotes       controllers.QuoteOptionsService
	Consumptions controllers.ConsumptionRecorder
	Gatherer     prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
		middleware.Idempotency(deps.Idempotency, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", controllers.WorkflowCreate(deps.Workflows, logg))
			r.Route("/{workflowID}", func(r chi.Router) {
				r.Get("/", controllers.WorkflowGet(deps.Workflows, logg))
				r.Delete("/", controllers.WorkflowDelete(deps.Workflows, logg))
				r.Post("/start", controllers.WorkflowStart(deps.Workflows, logg))
				r.Post("/selection", controllers.WorkflowSelection(deps.Workflows, logg))
				r.Post("/next", controllers.WorkflowNext(deps.Workflows, logg))
				r.Post("/back", controllers.WorkflowBack(deps.Workflows, logg))
				r.Get("/rows", controllers.WorkflowRows(deps.Workflows, logg))
				r.Put("/rows/{productItemID}", controllers.WorkflowSetQuantity(deps.Workflows, logg))
				r.Get("/validate", controllers.WorkflowValidate(deps.Workflows, logg))
				r.Get("/errors", controllers.WorkflowErrors(deps.Workflows, logg))
				r.Post("/confirm", controllers.WorkflowConfirm(deps.Workflows, logg))
			})
		})

		r.Get("/quotes/{quoteID}/options", controllers.QuoteOptions(deps.Quotes, logg))
		r.Put("/quotes/{quoteID}/options", controllers.QuoteSaveOptions(deps.Quotes, logg))

		r.Post("/work-orders/{workOrderID}/consumptions", controllers.WorkOrderRecordConsumption(deps.Consumptions, logg))
	})

	return r
}
