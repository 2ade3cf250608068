package aggregate

import (
	"time"

	"albion_guild_stats/internal/app"
)

var (
	now    = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	params = Params{Target: "We Profit", Alliance: "Bros"}
)

func pl(name string, kills, deaths, fame int) app.PlayerBattleStats {
	return app.PlayerBattleStats{Name: name, Kills: kills, Deaths: deaths, Fame: fame}
}

func battleAt(id string, at time.Time, guilds map[string]app.GuildBattleStats) app.BattleRecord {
	return app.BattleRecord{BattleID: id, Time: at, Details: app.BattleDetails{Guilds: guilds}}
}

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func names(players []app.PlayerAggregate) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}
