package battle

import (
	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/guild"
)

// DetermineOutcome decides whether the target guild won a battle. Kills and
// deaths of Self and allies are compared, as a K/D ratio, against those of
// every enemy guild; a tie is a loss. The boolean is false when the target
// guild did not take part, in which case the battle must be left out of
// every total.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func DetermineOutcome(b app.BattleRecord, target, alliance string) (app.Outcome, bool, error) {
	p, err := guild.PartitionBattle(b, target, alliance)
	if err != nil {
		return app.Outcome{}, false, err
	}
	if !p.HasSelf() {
		return app.Outcome{}, false, nil
	}
	return OutcomeOf(p), true, nil
}

// OutcomeOf computes the outcome of an already partitioned battle
func OutcomeOf(p guild.Partition) app.Outcome {
	var friendlyKills, friendlyDeaths int
	for _, m := range p.Friendly() {
		friendlyKills += m.Stats.TotalKills
		friendlyDeaths += m.Stats.TotalDeaths
	}

	var enemyKills, enemyDeaths int
	for _, m := range p.Enemies {
		enemyKills += m.Stats.TotalKills
		enemyDeaths += m.Stats.TotalDeaths
	}

	friendlyKD := app.KDRatio(friendlyKills, friendlyDeaths)
	enemyKD := app.KDRatio(enemyKills, enemyDeaths)

	return app.Outcome{
		Won:        friendlyKD > enemyKD,
		FriendlyKD: friendlyKD,
		EnemyKD:    enemyKD,
	}
}
