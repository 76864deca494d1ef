package web

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// NewHandlers wires the handlers shared by the API and the HTML views.
func NewHandlers(database *sql.DB, cfg *config.Config, logger *zap.Logger, version string) (*Handlers, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create template sub-FS: %w", err)
	}
	renderer, err := NewRenderer(templateSub, version)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		db:       database,
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
	}, nil
}

// NewRouter builds the chi router for the API, the week views and /metrics.
func NewRouter(h *Handlers) http.Handler {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static sub-FS: %v", err))
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(h.logger))
	r.Use(Recovery(h.logger))
	r.Use(metrics.Metrics)
	r.Use(securityHeaders)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/week", http.StatusFound)
	})
	r.Get("/week", h.HandleWeek)
	r.Get("/week/summary", h.HandleWeekSummary)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/meals", func(r chi.Router) {
			r.Get("/", h.ListMeals)
			r.Post("/", h.CreateMeal)
			r.Get("/search", h.SearchMeals)
			r.Get("/summary", h.MealSummary)
			r.Get("/calendar.ics", h.CalendarFeed)
			r.Post("/swap", h.SwapMeals)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetMeal)
				r.Put("/", h.UpdateMeal)
				r.Patch("/", h.UpdateMeal)
				r.Delete("/", h.DeleteMeal)
				r.Post("/copy", h.CopyMeal)
				r.Patch("/move", h.MoveMeal)
			})
		})
	})

	return r
}

// NewServer creates the HTTP server for the mealcal API and week views.
func NewServer(h *Handlers, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("mealcal listening", zap.String("url", "http://"+srv.Addr))
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
