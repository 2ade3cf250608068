package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/guild"
)

// ErrBattleNotFound is returned by FindBattle for an unknown id
var ErrBattleNotFound = errors.New("battle not found")

// DefaultMinMembers is the member threshold separating battles from skirmishes
const DefaultMinMembers = 20

// MinMemberFilter keeps battles from the trailing window in which the
// target guild fielded at least minMembers players.
//
// Pure function: Takes now as parameter to enable deterministic testing
func MinMemberFilter(battles []app.BattleRecord, p Params, minMembers, windowDays int, now time.Time) ([]app.BattleRecord, error) {
	cutoff := windowCutoff(now, windowDays)
	filtered := make([]app.BattleRecord, 0)

	for _, b := range battles {
		if b.Time.Before(cutoff) {
			continue
		}

		self, ok, err := guild.FindSelf(b, p.Target, p.Alliance)
		if err != nil {
			return nil, err
		}
		if ok && self.Stats.PlayerCount() >= minMembers {
			filtered = append(filtered, b)
		}
	}

	return filtered, nil
}

// RecentBattles returns the battles of the last days, newest first.
// Pure function: Does not modify input slice, returns new sorted slice
func RecentBattles(battles []app.BattleRecord, days int, now time.Time) []app.BattleRecord {
	cutoff := windowCutoff(now, days)
	recent := make([]app.BattleRecord, 0)

	for _, b := range battles {
		if !b.Time.Before(cutoff) {
			recent = append(recent, b)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Time.After(recent[j].Time)
	})

	return recent
}

// FindBattle looks a battle up by id
func FindBattle(battles []app.BattleRecord, id string) (app.BattleRecord, error) {
	for _, b := range battles {
		if b.BattleID == id {
			return b, nil
		}
	}
	return app.BattleRecord{}, fmt.Errorf("battle %s: %w", id, ErrBattleNotFound)
}
