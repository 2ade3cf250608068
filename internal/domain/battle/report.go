package battle

import (
	"fmt"
	"sort"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/guild"
)

// Report builds the detail view of one battle: the K/D of the target guild,
// of the friendly side and of the enemy side, one row per guild (Self first,
// then allies, then enemies by kills) and the target guild's players sorted
// by kills.
func Report(b app.BattleRecord, target, alliance string) (app.BattleReport, error) {
	p, err := guild.PartitionBattle(b, target, alliance)
	if err != nil {
		return app.BattleReport{}, err
	}
	if !p.HasSelf() {
		return app.BattleReport{}, fmt.Errorf("battle %s, guild %q: %w", b.BattleID, target, ErrGuildAbsent)
	}

	outcome := OutcomeOf(p)
	report := app.BattleReport{
		BattleID:   b.BattleID,
		Time:       b.Time,
		GuildName:  p.Self.Name,
		GuildKD:    app.KDRatio(p.Self.Stats.TotalKills, p.Self.Stats.TotalDeaths),
		FriendlyKD: outcome.FriendlyKD,
		EnemyKD:    outcome.EnemyKD,
		Victory:    outcome.Won,
	}

	report.Guilds = append(report.Guilds, guildRow(*p.Self))
	for _, m := range p.Allies {
		report.Guilds = append(report.Guilds, guildRow(m))
	}

	enemies := make([]app.GuildRow, 0, len(p.Enemies))
	for _, m := range p.Enemies {
		enemies = append(enemies, guildRow(m))
	}
	sort.SliceStable(enemies, func(i, j int) bool {
		return enemies[i].Kills > enemies[j].Kills
	})
	report.Guilds = append(report.Guilds, enemies...)

	report.Players = make([]app.PlayerBattleStats, len(p.Self.Stats.Players))
	copy(report.Players, p.Self.Stats.Players)
	sort.SliceStable(report.Players, func(i, j int) bool {
		return report.Players[i].Kills > report.Players[j].Kills
	})

	return report, nil
}

func guildRow(m guild.Member) app.GuildRow {
	return app.GuildRow{
		Name:    m.Name,
		Role:    m.Role.String(),
		Players: len(m.Stats.Players),
		Kills:   m.Stats.TotalKills,
		Deaths:  m.Stats.TotalDeaths,
		Fame:    m.Stats.TotalFame,
		KDRatio: app.KDRatio(m.Stats.TotalKills, m.Stats.TotalDeaths),
	}
}
