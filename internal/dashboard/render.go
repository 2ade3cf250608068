package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"albion_guild_stats/internal/app"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns dashboard tables into HTML pages
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded page templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

var funcs = template.FuncMap{
	"number":    FormatNumber,
	"ratio":     func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) },
	"percent":   func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" },
	"kdClass":   KDClass,
	"rateClass": WinRateClass,
	"datetime":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 UTC") },
	"date":      func(t time.Time) string { return t.UTC().Format("Jan 02") },
	"result": func(victory bool) string {
		if victory {
			return "Victory"
		}
		return "Defeat"
	},
}

// Render writes the dashboard page
func (r *Renderer) Render(w io.Writer, d *app.Dashboard) error {
	if d == nil {
		return fmt.Errorf("dashboard is nil")
	}
	if err := r.templates.ExecuteTemplate(w, "dashboard.html", d); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// RenderBattle writes the detail page of a single battle
func (r *Renderer) RenderBattle(w io.Writer, report *app.BattleReport) error {
	if report == nil {
		return fmt.Errorf("battle report is nil")
	}
	if err := r.templates.ExecuteTemplate(w, "battle.html", report); err != nil {
		return fmt.Errorf("failed to render battle %s: %w", report.BattleID, err)
	}
	return nil
}

// RenderFile renders the dashboard into path. The page is rendered in
// memory first and renamed into place so readers never see a partial file.
func (r *Renderer) RenderFile(path string, d *app.Dashboard) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dashboard directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dashboard-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close dashboard file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set dashboard permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move dashboard into place: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("bytes", buf.Len()).
		Msg("Rendered dashboard file")

	return nil
}

// FormatNumber adds thousands separators: 1234567 -> 1,234,567
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// KDClass buckets a kill/death ratio into bad, fair or good
func KDClass(kd float64) string {
	switch {
	case kd < 1:
		return "bad"
	case kd < 3:
		return "fair"
	default:
		return "good"
	}
}

// WinRateClass buckets a win rate percentage the same way
func WinRateClass(rate float64) string {
	switch {
	case rate < 40:
		return "bad"
	case rate < 60:
		return "fair"
	default:
		return "good"
	}
}
