package web

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/ragtp/internal/infrastructure/configs"
	"github.com/hilthontt/ragtp/internal/infrastructure/httpserver"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
)

const shutdownTimeout = 5 * time.Second

// Server serves the UI shell and its stylesheet. It never talks to the API.
type Server struct {
	config configs.WebConfig
	logger logging.Logger
}

func NewServer(config configs.WebConfig, logger logging.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
	}
}

func (s *Server) Mount() http.Handler {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("failed to initialize embedded static assets: " + err.Error())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", templ.Handler(Page()).ServeHTTP)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info(logging.RequestResponse, logging.StaticWeb, "Incoming request", map[logging.ExtraKey]any{
			logging.Method:    r.Method,
			logging.Url:       r.URL.RequestURI(),
			logging.RequestId: middleware.GetReqID(r.Context()),
			logging.ClientIp:  r.RemoteAddr,
		})

		next.ServeHTTP(w, r)
	})
}

func (s *Server) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	return httpserver.Run(ctx, srv, shutdownTimeout, s.logger)
}
