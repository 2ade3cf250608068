package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"albion_guild_stats/internal/albion"
	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/archive"
	"albion_guild_stats/internal/dashboard"
	"albion_guild_stats/internal/deployment"
	"albion_guild_stats/internal/processing"
	"albion_guild_stats/internal/server"
	"albion_guild_stats/internal/sheets"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	interval := flag.Duration("interval", 5*time.Minute, "Interval between feed refreshes (e.g., 5m, 10m)")
	runOnce := flag.Bool("once", false, "Run once and exit (don't start scheduler)")
	refresh := flag.Bool("refresh", false, "Ignore the cached feed on the first cycle")
	listen := flag.String("listen", "", "Address for the HTTP dashboard and API (e.g., :8080); empty disables it")
	flag.Parse()

	log.Info().
		Dur("interval", *interval).
		Bool("run_once", *runOnce).
		Str("listen", *listen).
		Msg("Starting Albion guild stats application")

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.UpdateInterval = *interval

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Feed source
	tracker := albion.NewAPICallTracker()
	client := albion.NewClient(config.GuildID, tracker)

	var cache albion.FeedCache
	if config.RedisURL != "" {
		redisCache, err := albion.NewRedisCache(config.RedisURL, config.GuildID, albion.DefaultFeedTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create redis feed cache")
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		cache = albion.NewFileCache(config.CacheFile, albion.DefaultFeedTTL)
	}
	feed := albion.NewCachedClient(client, cache, config.FeedPages)

	// Aggregation
	engine := processing.NewCachedEngine(processing.NewEngine(processing.EngineConfigFrom(config), nil))

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dashboard renderer")
	}

	outputs, closeOutputs := buildOutputs(ctx, config, renderer)
	defer closeOutputs()
	processor := processing.NewStatsProcessor(feed, engine, outputs, config)

	if *listen != "" && !*runOnce {
		srv := server.NewServer(engine, renderer, server.Defaults{
			WindowDays: config.WindowDays,
			MinBattles: config.MinBattles,
			TopLimit:   config.TopLimit,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, *listen); err != nil {
				log.Error().Err(err).Msg("HTTP server stopped")
				stop()
			}
		}()
	}

	// Define the main processing function
	processStats := func(refresh bool) {
		log.Debug().Msg("Starting stats processing cycle")

		// Reset API call counter at the start of each cycle
		tracker.ResetSession()

		result, err := processor.Process(ctx, refresh)
		if err != nil {
			log.Error().Err(err).Msg("Stats processing cycle failed")
		}
		if result != nil {
			log.Info().
				Uint64("version", result.Version).
				Int("battles", result.Battles).
				Time("fetched_at", result.FetchedAt).
				Strs("published", result.Published).
				Msg("Completed stats processing cycle")
		}

		tracker.LogSessionSummary()
	}

	// Run initial processing
	log.Info().Msg("Running initial stats processing")
	processStats(*refresh)

	// Exit if run-once flag is set
	if *runOnce {
		log.Info().Msg("Run-once mode: exiting after initial processing")
		return
	}

	// Start scheduled processing
	log.Info().
		Dur("interval", *interval).
		Msg("Starting scheduled stats processing")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return
		case <-ticker.C:
			processStats(true)
		}
	}
}

// buildOutputs wires the publication targets that are configured and returns
// a func releasing their clients. A failing optional output is logged and
// left out rather than stopping startup.
func buildOutputs(ctx context.Context, config *app.Config, renderer *dashboard.Renderer) (processing.Outputs, func()) {
	outputs := processing.Outputs{Renderer: renderer}
	closeOutputs := func() {}

	if config.SheetsEnabled() {
		sheetsClient, err := sheets.NewClient(ctx, config.CredentialsFile)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create sheets client, sheets publishing disabled")
		} else {
			outputs.Sheets = sheets.NewDashboardWriter(sheetsClient)
		}
	}

	if config.ArchiveEnabled() {
		archiver, err := archive.NewBattleArchiver(ctx, config.BigQueryProject, config.BigQueryDataset, config.BigQueryTable, config.CredentialsFile)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create battle archiver, archiving disabled")
		} else {
			outputs.Archiver = archiver
			closeOutputs = func() {
				if err := archiver.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close battle archiver")
				}
			}
		}
	}

	if config.DeployEnabled() {
		deployer, err := deployment.NewSSHDeployer(deployment.Options{
			DeployURL:      config.DeployURL,
			KeyFile:        config.DeployKeyFile,
			KnownHostsFile: config.DeployKnownHosts,
		})
		if err != nil {
			log.Error().Err(err).Msg("Invalid DEPLOY_URL, deployment disabled")
		} else {
			outputs.Deployer = deployer
		}
	}

	return outputs, closeOutputs
}
