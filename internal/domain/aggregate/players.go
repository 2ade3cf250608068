package aggregate

import (
	"fmt"
	"sort"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/guild"
)

// AccumulatePlayers sums every player who fought under the target guild,
// keyed by exact name, in first-seen order, with derived ratios filled in.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func AccumulatePlayers(battles []app.BattleRecord, p Params) ([]app.PlayerAggregate, error) {
	index := make(map[string]int)
	players := make([]app.PlayerAggregate, 0)

	for _, b := range battles {
		self, ok, err := guild.FindSelf(b, p.Target, p.Alliance)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		for _, ps := range self.Stats.Players {
			i, seen := index[ps.Name]
			if !seen {
				i = len(players)
				index[ps.Name] = i
				players = append(players, app.PlayerAggregate{Name: ps.Name})
			}
			players[i].Kills += ps.Kills
			players[i].Deaths += ps.Deaths
			players[i].Fame += ps.Fame
			players[i].Battles++
		}
	}

	for i := range players {
		players[i].KDRatio = app.KDRatio(players[i].Kills, players[i].Deaths)
		n := float64(max(1, players[i].Battles))
		players[i].AvgKills = float64(players[i].Kills) / n
		players[i].AvgDeaths = float64(players[i].Deaths) / n
	}

	return players, nil
}

// PlayerLeaderboard ranks players with at least minBattles battles,
// descending by metric. Ties keep first-seen order.
func PlayerLeaderboard(battles []app.BattleRecord, p Params, metric Metric, minBattles int) ([]app.PlayerAggregate, error) {
	players, err := AccumulatePlayers(battles, p)
	if err != nil {
		return nil, err
	}

	filtered := make([]app.PlayerAggregate, 0, len(players))
	for _, pa := range players {
		if pa.Battles >= minBattles {
			filtered = append(filtered, pa)
		}
	}

	if err := SortPlayers(filtered, metric); err != nil {
		return nil, err
	}
	return filtered, nil
}

// TopPlayers returns at most limit players, descending by metric
func TopPlayers(battles []app.BattleRecord, p Params, metric Metric, limit int) ([]app.PlayerAggregate, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}

	players, err := AccumulatePlayers(battles, p)
	if err != nil {
		return nil, err
	}
	if err := SortPlayers(players, metric); err != nil {
		return nil, err
	}

	if len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

// SortPlayers stable-sorts players in place, descending by metric
func SortPlayers(players []app.PlayerAggregate, metric Metric) error {
	if _, err := metric.Value(app.PlayerAggregate{}); err != nil {
		return err
	}

	sort.SliceStable(players, func(i, j int) bool {
		vi, _ := metric.Value(players[i])
		vj, _ := metric.Value(players[j])
		return vi > vj
	})
	return nil
}
