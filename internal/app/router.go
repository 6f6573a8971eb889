package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/descriptions"
	"github.com/chamanbahar/cbm-sales/internal/observability"
	"github.com/chamanbahar/cbm-sales/internal/orders"
	"github.com/chamanbahar/cbm-sales/internal/platform/httpx"
	"github.com/chamanbahar/cbm-sales/internal/preferences"
	"github.com/chamanbahar/cbm-sales/internal/retailers"
	"github.com/chamanbahar/cbm-sales/jobs"
)

// RouterParams groups dependencies for building the HTTP router. Nil
// handlers are skipped.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	CatalogHandler      *catalog.Handler
	DescriptionsHandler *descriptions.Handler
	RetailersHandler    *retailers.Handler
	OrdersHandler       *orders.Handler
	PreferencesHandler  *preferences.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with the default middleware.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwCfg := MiddlewareConfig{Logger: params.Logger, Config: params.Config}
	for _, mw := range MiddlewareStack(mwCfg) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	request := func(r chi.Router) {
		for _, mw := range RequestStack(mwCfg) {
			r.Use(mw)
		}
		if params.Metrics != nil {
			r.Use(params.Metrics.Middleware)
		}
	}
	stream := func(r chi.Router) {
		if params.Metrics != nil {
			r.Use(params.Metrics.StreamMiddleware)
		}
	}

	r.Group(func(r chi.Router) {
		request(r)
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		if params.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
		}
	})

	if params.CatalogHandler != nil || params.DescriptionsHandler != nil {
		r.Route("/catalog", func(r chi.Router) {
			request(r)
			if params.CatalogHandler != nil {
				params.CatalogHandler.MountRoutes(r)
			}
			if params.DescriptionsHandler != nil {
				params.DescriptionsHandler.MountRoutes(r)
			}
		})
	}
	if params.RetailersHandler != nil {
		r.Route("/retailers", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				stream(r)
				params.RetailersHandler.MountStreams(r)
			})
			r.Group(func(r chi.Router) {
				request(r)
				params.RetailersHandler.MountRoutes(r)
			})
		})
	}
	if params.OrdersHandler != nil {
		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				stream(r)
				params.OrdersHandler.MountStreams(r)
			})
			r.Group(func(r chi.Router) {
				request(r)
				params.OrdersHandler.MountRoutes(r)
			})
		})
	}
	if params.PreferencesHandler != nil {
		r.Route("/settings", func(r chi.Router) {
			request(r)
			params.PreferencesHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			request(r)
			params.JobHandler.MountRoutes(r)
		})
	}

	return r
}
