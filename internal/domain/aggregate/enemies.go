package aggregate

import (
	"sort"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/guild"
)

// EnemyGuildSummary totals every enemy guild across the battles it appeared
// in. The table is descriptive: it does not depend on who won. Battles the
// target guild did not take part in contribute nothing.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func EnemyGuildSummary(battles []app.BattleRecord, p Params) (map[string]app.GuildAggregate, error) {
	enemies := make(map[string]app.GuildAggregate)

	for _, b := range battles {
		part, err := guild.PartitionBattle(b, p.Target, p.Alliance)
		if err != nil {
			return nil, err
		}
		if !part.HasSelf() {
			continue
		}

		for _, m := range part.Enemies {
			agg := enemies[m.Name]
			agg.Name = m.Name
			agg.TotalBattles++
			agg.TotalKills += m.Stats.TotalKills
			agg.TotalDeaths += m.Stats.TotalDeaths
			agg.TotalFame += m.Stats.TotalFame
			enemies[m.Name] = agg
		}
	}

	for name, agg := range enemies {
		agg.KDRatio = app.KDRatio(agg.TotalKills, agg.TotalDeaths)
		enemies[name] = agg
	}

	return enemies, nil
}

// SortedEnemyGuilds flattens the enemy table, most frequent opponents first
// and then by name
func SortedEnemyGuilds(enemies map[string]app.GuildAggregate) []app.GuildAggregate {
	sorted := make([]app.GuildAggregate, 0, len(enemies))
	for _, agg := range enemies {
		sorted = append(sorted, agg)
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalBattles != sorted[j].TotalBattles {
			return sorted[i].TotalBattles > sorted[j].TotalBattles
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
