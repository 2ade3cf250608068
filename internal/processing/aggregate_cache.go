package processing

import (
	"fmt"
	"sync"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/aggregate"

	"github.com/rs/zerolog/log"
)

// Dataset is one installed version of the validated battle collection
type Dataset struct {
	Version     uint64
	Battles     []app.BattleRecord
	InstalledAt time.Time
}

type cacheKey struct {
	version  uint64
	function string
	params   string
}

// CachedEngine serves aggregates for the installed dataset, computing each
// (version, function, params) combination once. Installing a new dataset
// drops every cached entry. Results are shared between callers and must
// not be modified.
type CachedEngine struct {
	engine  *Engine
	mutex   sync.RWMutex
	dataset Dataset
	frozen  *Engine
	entries map[cacheKey]any
}

// NewCachedEngine creates a caching wrapper around an Engine with an empty dataset
func NewCachedEngine(engine *Engine) *CachedEngine {
	c := &CachedEngine{
		engine:  engine,
		entries: make(map[cacheKey]any),
	}
	c.dataset = Dataset{Battles: []app.BattleRecord{}, InstalledAt: engine.Now()}
	c.frozen = engine.At(c.dataset.InstalledAt)
	return c
}

// Install replaces the dataset and invalidates the cache. Time dependent
// aggregates are computed as of the installation time.
func (c *CachedEngine) Install(battles []app.BattleRecord) Dataset {
	if battles == nil {
		battles = []app.BattleRecord{}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	dropped := len(c.entries)
	c.dataset = Dataset{
		Version:     c.dataset.Version + 1,
		Battles:     battles,
		InstalledAt: c.engine.Now(),
	}
	c.frozen = c.engine.At(c.dataset.InstalledAt)
	c.entries = make(map[cacheKey]any)

	datasetVersion.Set(float64(c.dataset.Version))
	datasetBattles.Set(float64(len(battles)))

	log.Debug().
		Uint64("version", c.dataset.Version).
		Int("battles", len(battles)).
		Int("dropped_entries", dropped).
		Msg("Installed battle dataset")

	return c.dataset
}

// Dataset returns the installed dataset
func (c *CachedEngine) Dataset() Dataset {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.dataset
}

// cached looks up or computes one aggregate. Concurrent misses on the same
// key may compute twice; the results are identical.
func cached[T any](c *CachedEngine, function string, params string, compute func(e *Engine, d Dataset) (T, error)) (T, error) {
	c.mutex.RLock()
	dataset := c.dataset
	engine := c.frozen
	key := cacheKey{version: dataset.Version, function: function, params: params}
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if ok {
		aggregateCacheLookups.WithLabelValues("hit").Inc()
		return entry.(T), nil
	}
	aggregateCacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	value, err := compute(engine, dataset)
	aggregationDuration.WithLabelValues(function).Observe(time.Since(start).Seconds())
	if err != nil {
		var zero T
		return zero, err
	}

	c.mutex.Lock()
	// a concurrent Install makes this result stale; do not store it
	if c.dataset.Version == dataset.Version {
		c.entries[key] = value
	}
	c.mutex.Unlock()

	return value, nil
}

func (c *CachedEngine) Summary() (app.GuildAggregate, error) {
	return cached(c, "summary", "", func(e *Engine, d Dataset) (app.GuildAggregate, error) {
		return e.Summary(d.Battles)
	})
}

func (c *CachedEngine) Headline() (app.GuildAggregate, error) {
	return cached(c, "headline", "", func(e *Engine, d Dataset) (app.GuildAggregate, error) {
		return e.Headline(d.Battles)
	})
}

func (c *CachedEngine) Leaderboard(metric aggregate.Metric, minBattles int) ([]app.PlayerAggregate, error) {
	params := fmt.Sprintf("%s/%d", metric, minBattles)
	return cached(c, "leaderboard", params, func(e *Engine, d Dataset) ([]app.PlayerAggregate, error) {
		return e.Leaderboard(d.Battles, metric, minBattles)
	})
}

func (c *CachedEngine) Top(metric aggregate.Metric, limit int) ([]app.PlayerAggregate, error) {
	params := fmt.Sprintf("%s/%d", metric, limit)
	return cached(c, "top", params, func(e *Engine, d Dataset) ([]app.PlayerAggregate, error) {
		return e.Top(d.Battles, metric, limit)
	})
}

func (c *CachedEngine) Daily(days int) ([]app.DailyBucket, error) {
	return cached(c, "daily", fmt.Sprint(days), func(e *Engine, d Dataset) ([]app.DailyBucket, error) {
		return e.Daily(d.Battles, days)
	})
}

func (c *CachedEngine) Enemies() ([]app.GuildAggregate, error) {
	return cached(c, "enemies", "", func(e *Engine, d Dataset) ([]app.GuildAggregate, error) {
		return e.Enemies(d.Battles)
	})
}

func (c *CachedEngine) Recent(days int) ([]app.BattleRow, error) {
	return cached(c, "recent", fmt.Sprint(days), func(e *Engine, d Dataset) ([]app.BattleRow, error) {
		return e.Recent(d.Battles, days)
	})
}

func (c *CachedEngine) Battle(id string) (app.BattleReport, error) {
	return cached(c, "battle", id, func(e *Engine, d Dataset) (app.BattleReport, error) {
		return e.Battle(d.Battles, id)
	})
}

// Dashboard returns every published table for the installed dataset
func (c *CachedEngine) Dashboard() (*app.Dashboard, error) {
	return cached(c, "dashboard", "", func(e *Engine, d Dataset) (*app.Dashboard, error) {
		dashboard, err := e.Dashboard(d.Battles)
		if err != nil {
			return nil, err
		}
		dashboard.Version = d.Version
		return dashboard, nil
	})
}
