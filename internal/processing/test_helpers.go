package processing

import (
	"time"

	"albion_guild_stats/internal/app"
)

var testNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

var testEngineConfig = EngineConfig{
	Target:     "We Profit",
	Alliance:   "Bros",
	WindowDays: 7,
	MinMembers: 2,
	MinBattles: 1,
	TopLimit:   2,
}

// newTestEngine creates an Engine with the test configuration and a frozen clock
func newTestEngine() *Engine {
	return NewEngine(testEngineConfig, func() time.Time { return testNow })
}

func testPlayer(name string, kills, deaths, fame int) app.PlayerBattleStats {
	return app.PlayerBattleStats{Name: name, Kills: kills, Deaths: deaths, Fame: fame}
}

// testBattles returns a won headline battle, a lost one-man battle and a
// battle without the target guild
func testBattles() []app.BattleRecord {
	return []app.BattleRecord{
		{
			BattleID: "b2",
			Time:     testNow.AddDate(0, 0, -2),
			Details: app.BattleDetails{Guilds: map[string]app.GuildBattleStats{
				"We Profit":  app.NewGuildBattleStats(testPlayer("Ana", 0, 3, 0)),
				"Blood Moon": app.NewGuildBattleStats(testPlayer("Xan", 3, 0, 300)),
			}},
		},
		{
			BattleID: "b1",
			Time:     testNow.AddDate(0, 0, -1),
			Details: app.BattleDetails{Guilds: map[string]app.GuildBattleStats{
				"We Profit":  app.NewGuildBattleStats(testPlayer("Ana", 5, 1, 500), testPlayer("Bob", 1, 2, 100)),
				"Blood Moon": app.NewGuildBattleStats(testPlayer("Xan", 2, 4, 200)),
			}},
		},
		{
			BattleID: "b3",
			Time:     testNow.Add(-time.Hour),
			Details: app.BattleDetails{Guilds: map[string]app.GuildBattleStats{
				"Aurora": app.NewGuildBattleStats(testPlayer("Yun", 9, 9, 900)),
			}},
		},
	}
}
