package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxWindowDays matches the longest window the aggregates accept
const maxWindowDays = 366

// Config holds application configuration
type Config struct {
	GuildName    string
	GuildID      string
	AllianceName string

	WindowDays int
	MinMembers int
	MinBattles int
	TopLimit   int
	FeedPages  int

	CacheFile string
	RedisURL  string

	SpreadsheetID   string
	CredentialsFile string

	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	DeployURL        string
	DeployKeyFile    string
	DeployKnownHosts string
	DashboardFile    string

	UpdateInterval time.Duration
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so logging is configured first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	guildName := strings.TrimSpace(os.Getenv("GUILD_NAME"))
	if guildName == "" {
		return nil, fmt.Errorf("GUILD_NAME environment variable is required")
	}

	cfg := &Config{
		GuildName:        guildName,
		GuildID:          os.Getenv("GUILD_ID"),
		AllianceName:     strings.TrimSpace(os.Getenv("ALLIANCE_NAME")),
		CacheFile:        getEnv("CACHE_FILE", "data.json"),
		RedisURL:         os.Getenv("REDIS_URL"),
		SpreadsheetID:    os.Getenv("SPREADSHEET_ID"),
		CredentialsFile:  getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		BigQueryProject:  os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset:  getEnv("BIGQUERY_DATASET", "albion"),
		BigQueryTable:    getEnv("BIGQUERY_TABLE", "battle_players"),
		DeployURL:        os.Getenv("DEPLOY_URL"),
		DeployKeyFile:    getEnv("DEPLOY_KEY_FILE", "deploy.pem"),
		DeployKnownHosts: os.Getenv("DEPLOY_KNOWN_HOSTS"),
		DashboardFile:    getEnv("DASHBOARD_FILE", "dashboard.html"),
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		max      int
		dst      *int
	}{
		{"WINDOW_DAYS", 7, 0, maxWindowDays, &cfg.WindowDays},
		{"MIN_MEMBERS", 20, 0, 0, &cfg.MinMembers},
		{"MIN_BATTLES", 1, 1, 0, &cfg.MinBattles},
		{"TOP_LIMIT", 3, 1, 0, &cfg.TopLimit},
		{"FEED_PAGES", 1, 1, 0, &cfg.FeedPages},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.fallback)
		if err != nil {
			return nil, err
		}
		if n < v.min {
			return nil, fmt.Errorf("%s must be at least %d, got %d", v.key, v.min, n)
		}
		if v.max > 0 && n > v.max {
			return nil, fmt.Errorf("%s must be at most %d, got %d", v.key, v.max, n)
		}
		*v.dst = n
	}

	return cfg, nil
}

// SheetsEnabled reports whether a spreadsheet is configured
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != ""
}

// ArchiveEnabled reports whether BigQuery archiving is configured
func (c *Config) ArchiveEnabled() bool {
	return c.BigQueryProject != ""
}

// DeployEnabled reports whether dashboard deployment is configured
func (c *Config) DeployEnabled() bool {
	return c.DeployURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
