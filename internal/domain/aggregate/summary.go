package aggregate

import (
	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/battle"
	"albion_guild_stats/internal/domain/guild"
)

// GuildSummary totals the target guild's kills, deaths and fame over every
// battle it took part in and counts how many of those battles it won.
// Battles without the target guild are ignored, including in the win rate
// denominator.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func GuildSummary(battles []app.BattleRecord, p Params) (app.GuildAggregate, error) {
	summary := app.GuildAggregate{Name: p.Target}

	for _, b := range battles {
		part, err := guild.PartitionBattle(b, p.Target, p.Alliance)
		if err != nil {
			return app.GuildAggregate{}, err
		}
		if !part.HasSelf() {
			continue
		}

		summary.TotalBattles++
		summary.TotalKills += part.Self.Stats.TotalKills
		summary.TotalDeaths += part.Self.Stats.TotalDeaths
		summary.TotalFame += part.Self.Stats.TotalFame

		if battle.OutcomeOf(part).Won {
			summary.BattlesWon++
		}
	}

	summary.KDRatio = app.KDRatio(summary.TotalKills, summary.TotalDeaths)
	summary.WinRate = winRate(summary.BattlesWon, summary.TotalBattles)

	return summary, nil
}

func winRate(won, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(won) / float64(total) * 100
}
