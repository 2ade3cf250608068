package aggregate

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"albion_guild_stats/internal/app"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// fieldedGuilds is the pool battles are drawn from: the target, one ally and two enemies
var fieldedGuilds = []string{"We Profit", "Profit Bros", "Blood Moon", "Aurora"}

// genRoster encodes each player as a number: tens are kills, units are deaths
func genRoster() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 99))
}

func buildGuild(prefix string, roster []int) app.GuildBattleStats {
	players := make([]app.PlayerBattleStats, len(roster))
	for i, v := range roster {
		players[i] = app.PlayerBattleStats{
			Name:   fmt.Sprintf("%s-%d", prefix, i),
			Kills:  v / 10,
			Deaths: v % 10,
			Fame:   v * 100,
		}
	}
	return app.NewGuildBattleStats(players...)
}

// genBattle produces battles within the last 35 days
func genBattle() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 1000000),
		gen.IntRange(0, 35*24),
		genRoster(),
		genRoster(),
		genRoster(),
		genRoster(),
	).Map(func(values []interface{}) app.BattleRecord {
		guilds := make(map[string]app.GuildBattleStats)
		for i, name := range fieldedGuilds {
			roster := values[2+i].([]int)
			if len(roster) == 0 {
				continue
			}
			guilds[name] = buildGuild(name, roster)
		}

		return app.BattleRecord{
			BattleID: fmt.Sprint(values[0].(int)),
			Time:     now.Add(-time.Duration(values[1].(int)) * time.Hour),
			Details:  app.BattleDetails{Guilds: guilds},
		}
	})
}

func genBattles() gopter.Gen {
	return gen.SliceOf(genBattle())
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

// TestAggregationProperties uses property-based testing
func TestAggregationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MaxSize = 20

	properties := gopter.NewProperties(parameters)

	// Property: guild totals equal the sum of the target guild's player totals
	properties.Property("guild totals match player totals", prop.ForAll(
		func(battles []app.BattleRecord) bool {
			summary, err := GuildSummary(battles, params)
			if err != nil {
				return false
			}
			players, err := AccumulatePlayers(battles, params)
			if err != nil {
				return false
			}

			var kills, deaths, fame int
			for _, p := range players {
				kills += p.Kills
				deaths += p.Deaths
				fame += p.Fame
			}
			return kills == summary.TotalKills && deaths == summary.TotalDeaths && fame == summary.TotalFame
		},
		genBattles(),
	))

	// Property: aggregating the same input twice gives the same result
	properties.Property("aggregation is idempotent", prop.ForAll(
		func(battles []app.BattleRecord) bool {
			first, err1 := GuildSummary(battles, params)
			second, err2 := GuildSummary(battles, params)
			if err1 != nil || err2 != nil || first != second {
				return false
			}

			enemies1, _ := EnemyGuildSummary(battles, params)
			enemies2, _ := EnemyGuildSummary(battles, params)
			return reflect.DeepEqual(enemies1, enemies2)
		},
		genBattles(),
	))

	// Property: the daily series has one bucket per day of the window
	properties.Property("daily series length", prop.ForAll(
		func(battles []app.BattleRecord, windowDays int) bool {
			series, err := DailySeries(battles, params, windowDays, now)
			if err != nil || len(series) != windowDays+1 {
				return false
			}
			for i := 1; i < len(series); i++ {
				if !series[i].Date.Equal(series[i-1].Date.Add(day)) {
					return false
				}
			}
			return true
		},
		genBattles(),
		gen.IntRange(0, 60),
	))

	// Property: a window covering every battle reproduces the guild summary
	properties.Property("daily series sums to summary", prop.ForAll(
		func(battles []app.BattleRecord) bool {
			summary, err := GuildSummary(battles, params)
			if err != nil {
				return false
			}
			series, err := DailySeries(battles, params, 40, now)
			if err != nil {
				return false
			}

			var kills, deaths, fame, count, wins int
			for _, bucket := range series {
				kills += bucket.Kills
				deaths += bucket.Deaths
				fame += bucket.Fame
				count += bucket.Battles
				wins += bucket.Wins
			}
			return kills == summary.TotalKills && deaths == summary.TotalDeaths &&
				fame == summary.TotalFame && count == summary.TotalBattles && wins == summary.BattlesWon
		},
		genBattles(),
	))

	// Property: ratios are always finite and non-negative, win rate within [0, 100]
	properties.Property("ratios are finite", prop.ForAll(
		func(battles []app.BattleRecord) bool {
			summary, err := GuildSummary(battles, params)
			if err != nil || !finite(summary.KDRatio) || summary.WinRate < 0 || summary.WinRate > 100 {
				return false
			}
			players, _ := AccumulatePlayers(battles, params)
			for _, p := range players {
				if !finite(p.KDRatio) || !finite(p.AvgKills) || !finite(p.AvgDeaths) {
					return false
				}
			}
			enemies, _ := EnemyGuildSummary(battles, params)
			for _, e := range enemies {
				if !finite(e.KDRatio) {
					return false
				}
			}
			return true
		},
		genBattles(),
	))

	// Property: leaderboards are sorted descending by the requested metric
	properties.Property("leaderboard is sorted", prop.ForAll(
		func(battles []app.BattleRecord, metricIndex int, minBattles int) bool {
			metric := Metrics[metricIndex]
			board, err := PlayerLeaderboard(battles, params, metric, minBattles)
			if err != nil {
				return false
			}
			for i, p := range board {
				if p.Battles < minBattles {
					return false
				}
				if i == 0 {
					continue
				}
				prev, _ := metric.Value(board[i-1])
				cur, _ := metric.Value(p)
				if cur > prev {
					return false
				}
			}
			return true
		},
		genBattles(),
		gen.IntRange(0, len(Metrics)-1),
		gen.IntRange(1, 3),
	))

	// Property: battles without the target guild change nothing
	properties.Property("battles without the target contribute nothing", prop.ForAll(
		func(battles []app.BattleRecord) bool {
			withSelf := make([]app.BattleRecord, 0, len(battles))
			for _, b := range battles {
				if _, ok := b.Details.Guilds["We Profit"]; ok {
					withSelf = append(withSelf, b)
				}
			}

			all, err1 := GuildSummary(battles, params)
			only, err2 := GuildSummary(withSelf, params)
			if err1 != nil || err2 != nil || all != only {
				return false
			}

			allEnemies, _ := EnemyGuildSummary(battles, params)
			onlyEnemies, _ := EnemyGuildSummary(withSelf, params)
			return reflect.DeepEqual(allEnemies, onlyEnemies)
		},
		genBattles(),
	))

	// Property: the member filter only keeps recent battles with enough members
	properties.Property("member filter keeps large recent battles", prop.ForAll(
		func(battles []app.BattleRecord, minMembers int) bool {
			filtered, err := MinMemberFilter(battles, params, minMembers, 7, now)
			if err != nil || len(filtered) > len(battles) {
				return false
			}
			cutoff := now.Add(-7 * day)
			for _, b := range filtered {
				self, ok := b.Details.Guilds["We Profit"]
				if !ok || self.PlayerCount() < minMembers || b.Time.Before(cutoff) {
					return false
				}
			}
			return true
		},
		genBattles(),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
