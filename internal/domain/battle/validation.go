package battle

import "albion_guild_stats/internal/app"

// Validate checks a battle record against the ingestion data contract:
// identity and time present, guilds present, no negative stats, named
// players, and guild totals equal to the sums of their players.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func Validate(b app.BattleRecord) error {
	if b.BattleID == "" {
		return malformed("", "missing battle_id")
	}
	if b.Time.IsZero() {
		return malformed(b.BattleID, "missing time")
	}
	if b.Details.Guilds == nil {
		return malformed(b.BattleID, "missing guilds")
	}

	for name, g := range b.Details.Guilds {
		if g.TotalKills < 0 || g.TotalDeaths < 0 || g.TotalFame < 0 {
			return malformed(b.BattleID, "guild %q has negative totals", name)
		}

		var kills, deaths, fame int
		for i, p := range g.Players {
			if p.Name == "" {
				return malformed(b.BattleID, "guild %q player %d has no name", name, i)
			}
			if p.Kills < 0 || p.Deaths < 0 || p.Fame < 0 {
				return malformed(b.BattleID, "player %q has negative stats", p.Name)
			}
			kills += p.Kills
			deaths += p.Deaths
			fame += p.Fame
		}

		if kills != g.TotalKills || deaths != g.TotalDeaths || fame != g.TotalFame {
			return malformed(b.BattleID,
				"guild %q totals (%d/%d/%d) do not match player sums (%d/%d/%d)",
				name, g.TotalKills, g.TotalDeaths, g.TotalFame, kills, deaths, fame)
		}
	}

	return nil
}

// ValidateAll validates every battle and stops at the first malformed one
func ValidateAll(battles []app.BattleRecord) error {
	for _, b := range battles {
		if err := Validate(b); err != nil {
			return err
		}
	}
	return nil
}
