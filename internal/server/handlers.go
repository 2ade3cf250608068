package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"albion_guild_stats/internal/domain/aggregate"
	"albion_guild_stats/internal/domain/battle"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type healthResponse struct {
	Status      string `json:"status"`
	Version     uint64 `json:"version"`
	Battles     int    `json:"battles"`
	InstalledAt string `json:"installed_at"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	d := s.stats.Dataset()
	jsonResponse(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Version:     d.Version,
		Battles:     len(d.Battles),
		InstalledAt: d.InstalledAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.stats.Dashboard()
	if err != nil {
		errorResponse(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.Render(&buf, dashboard); err != nil {
		errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	htmlResponse(w, buf.Bytes())
}

func (s *Server) battlePage(w http.ResponseWriter, r *http.Request) {
	report, err := s.stats.Battle(chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.RenderBattle(&buf, &report); err != nil {
		errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	htmlResponse(w, buf.Bytes())
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.stats.Dashboard()
	respond(w, dashboard, err)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.Summary()
	respond(w, summary, err)
}

func (s *Server) getPlayers(w http.ResponseWriter, r *http.Request) {
	metric, err := metricParam(r, aggregate.MetricKills)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}
	minBattles, err := intParam(r, "min_battles", s.defaults.MinBattles)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}

	players, err := s.stats.Leaderboard(metric, minBattles)
	respond(w, players, err)
}

func (s *Server) getTop(w http.ResponseWriter, r *http.Request) {
	metric, err := metricParam(r, aggregate.MetricKills)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", s.defaults.TopLimit)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}

	players, err := s.stats.Top(metric, limit)
	respond(w, players, err)
}

func (s *Server) getDaily(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, s.defaults.WindowDays)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}

	buckets, err := s.stats.Daily(days)
	respond(w, buckets, err)
}

func (s *Server) getEnemies(w http.ResponseWriter, r *http.Request) {
	enemies, err := s.stats.Enemies()
	respond(w, enemies, err)
}

func (s *Server) getBattles(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, s.defaults.WindowDays)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.stats.Recent(days)
	respond(w, rows, err)
}

func (s *Server) getBattle(w http.ResponseWriter, r *http.Request) {
	report, err := s.stats.Battle(chi.URLParam(r, "id"))
	respond(w, report, err)
}

func metricParam(r *http.Request, fallback aggregate.Metric) (aggregate.Metric, error) {
	v := r.URL.Query().Get("metric")
	if v == "" {
		return fallback, nil
	}
	return aggregate.ParseMetric(v)
}

// intParam reads a non-negative integer query parameter
func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return n, nil
}

// daysParam reads the trailing window, at most aggregate.MaxWindowDays
func daysParam(r *http.Request, fallback int) (int, error) {
	days, err := intParam(r, "days", fallback)
	if err != nil {
		return 0, err
	}
	if days > aggregate.MaxWindowDays {
		return 0, fmt.Errorf("days must be at most %d", aggregate.MaxWindowDays)
	}
	return days, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, aggregate.ErrBattleNotFound), errors.Is(err, battle.ErrGuildAbsent):
		return http.StatusNotFound
	case errors.Is(err, aggregate.ErrUnknownMetric), errors.Is(err, aggregate.ErrWindowOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		errorResponse(w, statusFor(err), err)
		return
	}
	jsonResponse(w, http.StatusOK, data)
}

// jsonResponse encodes into a buffer before writing the header; an
// encoding failure is sent as a 500
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		fmt.Fprintf(&buf, "{\"error\":%q}\n", "failed to encode response")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func errorResponse(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	jsonResponse(w, status, map[string]string{"error": err.Error()})
}

func htmlResponse(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
