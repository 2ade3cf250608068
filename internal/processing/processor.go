package processing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"albion_guild_stats/internal/albion"
	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/battle"

	"github.com/rs/zerolog/log"
)

// Outputs are the optional publication targets of a refresh cycle. Nil
// fields are skipped.
type Outputs struct {
	Sheets   SheetsClientInterface
	Archiver ArchiverInterface
	Renderer DashboardRendererInterface
	Deployer DeployerInterface
}

// CycleResult describes one completed refresh cycle
type CycleResult struct {
	Version   uint64
	Battles   int
	FetchedAt time.Time
	Published []string
}

// StatsProcessor runs the refresh cycle: fetch the feed, normalize and
// validate it, install it as the new dataset and publish the dashboard.
type StatsProcessor struct {
	feed          FeedSourceInterface
	engine        *CachedEngine
	outputs       Outputs
	filter        albion.GuildFilter
	spreadsheetID string
	dashboardFile string

	mutex    sync.Mutex
	archived map[string]bool
}

// NewStatsProcessor creates a StatsProcessor with interface dependencies for testability
func NewStatsProcessor(feed FeedSourceInterface, engine *CachedEngine, outputs Outputs, config *app.Config) *StatsProcessor {
	return &StatsProcessor{
		feed:          feed,
		engine:        engine,
		outputs:       outputs,
		filter:        albion.GuildFilter{ID: config.GuildID, Name: config.GuildName},
		spreadsheetID: config.SpreadsheetID,
		dashboardFile: config.DashboardFile,
		archived:      make(map[string]bool),
	}
}

// Process runs one refresh cycle. A malformed feed is rejected before
// installation so the previous dataset keeps being served. Publication
// failures do not undo the installation; they are logged and returned
// together.
func (p *StatsProcessor) Process(ctx context.Context, refresh bool) (*CycleResult, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
	}()

	log.Debug().Bool("refresh", refresh).Msg("Starting refresh cycle")

	snapshot, err := p.feed.Battles(ctx, refresh)
	if err != nil {
		cyclesTotal.WithLabelValues("fetch_failed").Inc()
		return nil, fmt.Errorf("failed to fetch battle feed: %w", err)
	}

	records := albion.Normalize(snapshot.Battles, p.filter)
	if err := battle.ValidateAll(records); err != nil {
		cyclesTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("failed to validate battle feed: %w", err)
	}

	dataset := p.engine.Install(records)
	result := &CycleResult{
		Version:   dataset.Version,
		Battles:   len(records),
		FetchedAt: snapshot.FetchedAt,
	}

	log.Info().
		Uint64("version", dataset.Version).
		Int("raw_battles", len(snapshot.Battles)).
		Int("battles", len(records)).
		Time("fetched_at", snapshot.FetchedAt).
		Msg("Installed new battle dataset")

	dashboard, err := p.engine.Dashboard()
	if err != nil {
		cyclesTotal.WithLabelValues("aggregation_failed").Inc()
		return result, fmt.Errorf("failed to build dashboard: %w", err)
	}

	var errs []error
	publish := func(output string, fn func() error) bool {
		if err := fn(); err != nil {
			publishFailures.WithLabelValues(output).Inc()
			log.Error().Err(err).Str("output", output).Msg("Failed to publish")
			errs = append(errs, fmt.Errorf("%s: %w", output, err))
			return false
		}
		result.Published = append(result.Published, output)
		return true
	}

	if p.outputs.Sheets != nil && p.spreadsheetID != "" {
		publish("sheets", func() error { return p.publishSheets(ctx, dashboard) })
	}
	if p.outputs.Archiver != nil {
		publish("archive", func() error { return p.archive(ctx, records) })
	}
	if p.outputs.Renderer != nil && p.dashboardFile != "" {
		rendered := publish("dashboard", func() error { return p.outputs.Renderer.RenderFile(p.dashboardFile, dashboard) })
		if rendered && p.outputs.Deployer != nil {
			publish("deploy", p.deploy)
		}
	}

	if len(errs) > 0 {
		cyclesTotal.WithLabelValues("publish_failed").Inc()
		return result, errors.Join(errs...)
	}

	cyclesTotal.WithLabelValues("success").Inc()
	lastSuccess.SetToCurrentTime()

	log.Info().
		Uint64("version", result.Version).
		Strs("published", result.Published).
		Dur("duration", time.Since(start)).
		Msg("Completed refresh cycle")

	return result, nil
}

func (p *StatsProcessor) publishSheets(ctx context.Context, dashboard *app.Dashboard) error {
	if err := p.outputs.Sheets.UpdateDashboard(ctx, p.spreadsheetID, dashboard); err != nil {
		return fmt.Errorf("failed to update dashboard tabs: %w", err)
	}

	appended, err := p.outputs.Sheets.AppendBattleLog(ctx, p.spreadsheetID, dashboard.Recent)
	if err != nil {
		return fmt.Errorf("failed to append battle log: %w", err)
	}

	log.Debug().Int("appended_battles", appended).Msg("Updated battle log")
	return nil
}

// archive stores the battles not archived by an earlier cycle of this process
func (p *StatsProcessor) archive(ctx context.Context, records []app.BattleRecord) error {
	fresh := make([]app.BattleRecord, 0, len(records))
	for _, r := range records {
		if !p.archived[r.BattleID] {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		log.Debug().Msg("No new battles to archive")
		return nil
	}

	rows, err := p.outputs.Archiver.ArchiveBattles(ctx, fresh)
	if err != nil {
		return err
	}

	for _, r := range fresh {
		p.archived[r.BattleID] = true
	}

	log.Info().
		Int("battles", len(fresh)).
		Int("rows", rows).
		Msg("Archived battles")
	return nil
}

func (p *StatsProcessor) deploy() error {
	defer func() {
		if err := p.outputs.Deployer.Disconnect(); err != nil {
			log.Warn().Err(err).Msg("Failed to close deploy connection")
		}
	}()
	return p.outputs.Deployer.DeployFile(p.dashboardFile, filepath.Base(p.dashboardFile))
}
