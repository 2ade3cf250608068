package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/aggregate"
	"albion_guild_stats/internal/processing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// StatsSource serves aggregates for the currently installed dataset.
// *processing.CachedEngine implements it.
type StatsSource interface {
	Dataset() processing.Dataset
	Summary() (app.GuildAggregate, error)
	Leaderboard(metric aggregate.Metric, minBattles int) ([]app.PlayerAggregate, error)
	Top(metric aggregate.Metric, limit int) ([]app.PlayerAggregate, error)
	Daily(days int) ([]app.DailyBucket, error)
	Enemies() ([]app.GuildAggregate, error)
	Recent(days int) ([]app.BattleRow, error)
	Battle(id string) (app.BattleReport, error)
	Dashboard() (*app.Dashboard, error)
}

// PageRenderer renders the HTML pages
type PageRenderer interface {
	Render(w io.Writer, d *app.Dashboard) error
	RenderBattle(w io.Writer, report *app.BattleReport) error
}

// Defaults applied when a query parameter is omitted
type Defaults struct {
	WindowDays int
	MinBattles int
	TopLimit   int
}

// Server exposes dashboards and aggregates over HTTP
type Server struct {
	stats    StatsSource
	pages    PageRenderer
	defaults Defaults
}

// NewServer creates a server over the given stats source
func NewServer(stats StatsSource, pages PageRenderer, defaults Defaults) *Server {
	return &Server{
		stats:    stats,
		pages:    pages,
		defaults: defaults,
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.dashboardPage)
	r.Get("/battles/{id}", s.battlePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.getDashboard)
		r.Get("/summary", s.getSummary)
		r.Get("/players", s.getPlayers)
		r.Get("/top", s.getTop)
		r.Get("/daily", s.getDaily)
		r.Get("/enemies", s.getEnemies)
		r.Get("/battles", s.getBattles)
		r.Get("/battles/{id}", s.getBattle)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, fmt.Sprint(status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Handled request")
	})
}
