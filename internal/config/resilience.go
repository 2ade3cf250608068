package config

import "time"

// Retry configuration constants
const (
	// Gameinfo API retry configuration. The endpoint regularly answers 504
	// under load, so it gets one more attempt than the Google APIs.
	GameinfoMaxAttempts       = 4
	GameinfoInitialWait       = 1 * time.Second
	GameinfoMaxWait           = 15 * time.Second
	GameinfoBackoffMultiplier = 2.0
	GameinfoTimeout           = 30 * time.Second

	// Sheet Write retry configuration
	SheetWriteMaxAttempts       = 3
	SheetWriteInitialWait       = 1 * time.Second
	SheetWriteMaxWait           = 10 * time.Second
	SheetWriteBackoffMultiplier = 2.0
	SheetWriteTimeout           = 30 * time.Second

	// Archive insert retry configuration
	ArchiveInsertMaxAttempts       = 3
	ArchiveInsertInitialWait       = 2 * time.Second
	ArchiveInsertMaxWait           = 20 * time.Second
	ArchiveInsertBackoffMultiplier = 2.0
	ArchiveInsertTimeout           = 60 * time.Second
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// Backoff returns the wait before the given retry (1 for the first retry),
// growing by Multiplier and capped at MaxWait.
func (r RetryConfig) Backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}

	wait := float64(r.InitialWait)
	for i := 1; i < retry; i++ {
		wait *= r.Multiplier
		if r.MaxWait > 0 && time.Duration(wait) >= r.MaxWait {
			return r.MaxWait
		}
	}

	if r.MaxWait > 0 && time.Duration(wait) > r.MaxWait {
		return r.MaxWait
	}
	return time.Duration(wait)
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	Gameinfo      RetryConfig
	SheetWrite    RetryConfig
	ArchiveInsert RetryConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	Gameinfo: RetryConfig{
		MaxAttempts: GameinfoMaxAttempts,
		InitialWait: GameinfoInitialWait,
		MaxWait:     GameinfoMaxWait,
		Multiplier:  GameinfoBackoffMultiplier,
		Timeout:     GameinfoTimeout,
	},
	SheetWrite: RetryConfig{
		MaxAttempts: SheetWriteMaxAttempts,
		InitialWait: SheetWriteInitialWait,
		MaxWait:     SheetWriteMaxWait,
		Multiplier:  SheetWriteBackoffMultiplier,
		Timeout:     SheetWriteTimeout,
	},
	ArchiveInsert: RetryConfig{
		MaxAttempts: ArchiveInsertMaxAttempts,
		InitialWait: ArchiveInsertInitialWait,
		MaxWait:     ArchiveInsertMaxWait,
		Multiplier:  ArchiveInsertBackoffMultiplier,
		Timeout:     ArchiveInsertTimeout,
	},
}
