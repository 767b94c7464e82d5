package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/ragtp/internal/infrastructure/configs"
	"github.com/hilthontt/ragtp/internal/infrastructure/httpserver"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	healthHandler "github.com/hilthontt/ragtp/internal/presentation/handler/health"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "ragtp-api"

// HandlerFunc is a route handler that reports failure by returning an
// error instead of writing the response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type Application struct {
	config        configs.Config
	healthHandler healthHandler.Handler
	logger        logging.Logger
}

func NewApplication(
	config configs.Config,
	healthHandler healthHandler.Handler,
	logger logging.Logger,
) *Application {
	return &Application{
		config:        config,
		healthHandler: healthHandler,
		logger:        logger,
	}
}

// Mount returns the full request pipeline: the tracing wrapper around the
// router and its ordered stages.
func (app *Application) Mount() http.Handler {
	return app.instrument(app.router())
}

// stages lists the request pipeline in execution order. The error stage
// comes first so it encloses everything after it.
func (app *Application) stages() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		app.recoverer,
		app.decodeBody,
		app.requestLogger,
	}
}

func (app *Application) router() chi.Router {
	r := chi.NewRouter()
	r.Use(app.stages()...)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.handle(app.healthHandler.GetHealth))
		r.Get("/status", app.handle(app.healthHandler.GetStatus))
	})

	return r
}

func (app *Application) instrument(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// handle adapts h to net/http, sending a returned error to the error stage.
func (app *Application) handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			app.internalError(w, r, err)
		}
	}
}

func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.HTTP.Addr(),
		Handler:      mux,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		IdleTimeout:  app.config.HTTP.IdleTimeout,
	}

	return httpserver.Run(ctx, srv, app.config.HTTP.ShutdownTimeout, app.logger)
}
