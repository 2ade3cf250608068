package aggregate

import (
	"errors"
	"fmt"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/battle"
	"albion_guild_stats/internal/domain/guild"
)

const day = 24 * time.Hour

// MaxWindowDays bounds every trailing window, one year plus a leap day
const MaxWindowDays = 366

// ErrWindowOutOfRange is returned for a window outside [0, MaxWindowDays]
var ErrWindowOutOfRange = errors.New("window out of range")

// CheckWindow validates a trailing window length in days
func CheckWindow(days int) error {
	if days < 0 || days > MaxWindowDays {
		return fmt.Errorf("window of %d days must be between 0 and %d: %w", days, MaxWindowDays, ErrWindowOutOfRange)
	}
	return nil
}

// windowCutoff is the instant days calendar days before now, in UTC
func windowCutoff(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, -days)
}

// DailySeries buckets the target guild's battles per UTC calendar day over
// [today-windowDays, today]. Every day of the window has a bucket, zeroed
// when nothing happened, so the result always has windowDays+1 entries in
// ascending date order. Battles outside the window are skipped.
//
// Pure function: Takes now as parameter to enable deterministic testing
func DailySeries(battles []app.BattleRecord, p Params, windowDays int, now time.Time) ([]app.DailyBucket, error) {
	if err := CheckWindow(windowDays); err != nil {
		return nil, err
	}

	end := truncateDay(now)
	start := end.AddDate(0, 0, -windowDays)

	buckets := make([]app.DailyBucket, windowDays+1)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i)
	}

	for _, b := range battles {
		date := truncateDay(b.Time)
		if date.Before(start) || date.After(end) {
			continue
		}

		part, err := guild.PartitionBattle(b, p.Target, p.Alliance)
		if err != nil {
			return nil, err
		}
		if !part.HasSelf() {
			continue
		}

		bucket := &buckets[int(date.Sub(start)/day)]
		bucket.Kills += part.Self.Stats.TotalKills
		bucket.Deaths += part.Self.Stats.TotalDeaths
		bucket.Fame += part.Self.Stats.TotalFame
		bucket.Battles++
		if battle.OutcomeOf(part).Won {
			bucket.Wins++
		}
	}

	for i := range buckets {
		buckets[i].KDRatio = app.KDRatio(buckets[i].Kills, buckets[i].Deaths)
		buckets[i].WinRate = winRate(buckets[i].Wins, buckets[i].Battles)
	}

	return buckets, nil
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
