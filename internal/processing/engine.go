package processing

import (
	"errors"
	"fmt"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/aggregate"
	"albion_guild_stats/internal/domain/battle"
)

// EngineConfig is the explicit configuration every aggregation runs with
type EngineConfig struct {
	Target     string
	Alliance   string
	WindowDays int
	MinMembers int
	MinBattles int
	TopLimit   int
}

// EngineConfigFrom extracts the aggregation settings from the application config
func EngineConfigFrom(cfg *app.Config) EngineConfig {
	return EngineConfig{
		Target:     cfg.GuildName,
		Alliance:   cfg.AllianceName,
		WindowDays: cfg.WindowDays,
		MinMembers: cfg.MinMembers,
		MinBattles: cfg.MinBattles,
		TopLimit:   cfg.TopLimit,
	}
}

// Engine runs the aggregation functions with a fixed configuration and
// clock so callers never pass guild names or window sizes around.
type Engine struct {
	config EngineConfig
	now    func() time.Time
}

// NewEngine creates an engine. A nil clock uses time.Now.
func NewEngine(config EngineConfig, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{config: config, now: now}
}

// At returns a copy of the engine whose clock is frozen at t
func (e *Engine) At(t time.Time) *Engine {
	return &Engine{config: e.config, now: func() time.Time { return t }}
}

// Config returns the engine configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Now returns the engine clock's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) params() aggregate.Params {
	return aggregate.Params{Target: e.config.Target, Alliance: e.config.Alliance}
}

func (e *Engine) Summary(battles []app.BattleRecord) (app.GuildAggregate, error) {
	return aggregate.GuildSummary(battles, e.params())
}

// Headline summarizes only the battles passing the member threshold in the window
func (e *Engine) Headline(battles []app.BattleRecord) (app.GuildAggregate, error) {
	filtered, err := e.HeadlineBattles(battles)
	if err != nil {
		return app.GuildAggregate{}, err
	}
	return aggregate.GuildSummary(filtered, e.params())
}

func (e *Engine) HeadlineBattles(battles []app.BattleRecord) ([]app.BattleRecord, error) {
	return aggregate.MinMemberFilter(battles, e.params(), e.config.MinMembers, e.config.WindowDays, e.now())
}

func (e *Engine) Leaderboard(battles []app.BattleRecord, metric aggregate.Metric, minBattles int) ([]app.PlayerAggregate, error) {
	return aggregate.PlayerLeaderboard(battles, e.params(), metric, minBattles)
}

func (e *Engine) Top(battles []app.BattleRecord, metric aggregate.Metric, limit int) ([]app.PlayerAggregate, error) {
	return aggregate.TopPlayers(battles, e.params(), metric, limit)
}

func (e *Engine) Daily(battles []app.BattleRecord, days int) ([]app.DailyBucket, error) {
	return aggregate.DailySeries(battles, e.params(), days, e.now())
}

// Enemies returns the enemy guild table, most frequent opponents first
func (e *Engine) Enemies(battles []app.BattleRecord) ([]app.GuildAggregate, error) {
	enemies, err := aggregate.EnemyGuildSummary(battles, e.params())
	if err != nil {
		return nil, err
	}
	return aggregate.SortedEnemyGuilds(enemies), nil
}

// Recent returns the rows of the battles fought in the last days, newest first
func (e *Engine) Recent(battles []app.BattleRecord, days int) ([]app.BattleRow, error) {
	if err := aggregate.CheckWindow(days); err != nil {
		return nil, err
	}
	recent := aggregate.RecentBattles(battles, days, e.now())

	rows := make([]app.BattleRow, 0, len(recent))
	for _, b := range recent {
		report, err := battle.Report(b, e.config.Target, e.config.Alliance)
		if errors.Is(err, battle.ErrGuildAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, BattleRowFromReport(report))
	}

	return rows, nil
}

// Battle builds the detail report of one battle
func (e *Engine) Battle(battles []app.BattleRecord, id string) (app.BattleReport, error) {
	b, err := aggregate.FindBattle(battles, id)
	if err != nil {
		return app.BattleReport{}, err
	}
	return battle.Report(b, e.config.Target, e.config.Alliance)
}

// Dashboard computes every published table for one dataset
func (e *Engine) Dashboard(battles []app.BattleRecord) (*app.Dashboard, error) {
	d := &app.Dashboard{
		GuildName:   e.config.Target,
		GeneratedAt: e.now().UTC(),
		WindowDays:  e.config.WindowDays,
		MinMembers:  e.config.MinMembers,
	}

	var err error
	if d.Summary, err = e.Summary(battles); err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	if d.Headline, err = e.Headline(battles); err != nil {
		return nil, fmt.Errorf("failed to compute headline summary: %w", err)
	}
	if d.Daily, err = e.Daily(battles, e.config.WindowDays); err != nil {
		return nil, fmt.Errorf("failed to compute daily series: %w", err)
	}
	if d.Leaderboard, err = e.Leaderboard(battles, aggregate.MetricKills, e.config.MinBattles); err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard: %w", err)
	}
	if d.TopKillers, err = e.Top(battles, aggregate.MetricKills, e.config.TopLimit); err != nil {
		return nil, fmt.Errorf("failed to compute top killers: %w", err)
	}
	if d.TopDeaths, err = e.Top(battles, aggregate.MetricDeaths, e.config.TopLimit); err != nil {
		return nil, fmt.Errorf("failed to compute top deaths: %w", err)
	}
	if d.TopKD, err = e.Top(battles, aggregate.MetricKDRatio, e.config.TopLimit); err != nil {
		return nil, fmt.Errorf("failed to compute top kd: %w", err)
	}
	if d.Enemies, err = e.Enemies(battles); err != nil {
		return nil, fmt.Errorf("failed to compute enemy guilds: %w", err)
	}
	if d.Recent, err = e.Recent(battles, e.config.WindowDays); err != nil {
		return nil, fmt.Errorf("failed to compute recent battles: %w", err)
	}

	players, err := aggregate.AccumulatePlayers(battles, e.params())
	if err != nil {
		return nil, fmt.Errorf("failed to count active players: %w", err)
	}
	d.ActivePlayers = len(players)

	return d, nil
}

// BattleRowFromReport flattens a battle report into a table row
func BattleRowFromReport(r app.BattleReport) app.BattleRow {
	row := app.BattleRow{
		BattleID:   r.BattleID,
		Time:       r.Time,
		KDRatio:    r.GuildKD,
		FriendlyKD: r.FriendlyKD,
		EnemyKD:    r.EnemyKD,
		Victory:    r.Victory,
	}
	if len(r.Guilds) > 0 {
		self := r.Guilds[0]
		row.Players = self.Players
		row.Kills = self.Kills
		row.Deaths = self.Deaths
		row.Fame = self.Fame
	}
	return row
}
