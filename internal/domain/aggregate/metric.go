package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"albion_guild_stats/internal/app"
)

// Params identifies the target guild and its optional alliance
type Params struct {
	Target   string
	Alliance string
}

// Metric is a player ranking key
type Metric string

const (
	MetricKills     Metric = "kills"
	MetricDeaths    Metric = "deaths"
	MetricFame      Metric = "fame"
	MetricBattles   Metric = "battles"
	MetricKDRatio   Metric = "kd_ratio"
	MetricAvgKills  Metric = "avg_kills"
	MetricAvgDeaths Metric = "avg_deaths"
)

// Metrics lists every supported ranking key
var Metrics = []Metric{
	MetricKills, MetricDeaths, MetricFame, MetricBattles,
	MetricKDRatio, MetricAvgKills, MetricAvgDeaths,
}

// ErrUnknownMetric is returned for a ranking key outside Metrics
var ErrUnknownMetric = errors.New("unknown metric")

// ParseMetric converts a case-insensitive name into a Metric
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMetric)
}

// Value extracts the metric from a player aggregate
func (m Metric) Value(p app.PlayerAggregate) (float64, error) {
	switch m {
	case MetricKills:
		return float64(p.Kills), nil
	case MetricDeaths:
		return float64(p.Deaths), nil
	case MetricFame:
		return float64(p.Fame), nil
	case MetricBattles:
		return float64(p.Battles), nil
	case MetricKDRatio:
		return p.KDRatio, nil
	case MetricAvgKills:
		return p.AvgKills, nil
	case MetricAvgDeaths:
		return p.AvgDeaths, nil
	}
	return 0, fmt.Errorf("%q: %w", string(m), ErrUnknownMetric)
}
