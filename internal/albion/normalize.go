package albion

import (
	"sort"
	"strconv"
	"strings"

	"albion_guild_stats/internal/app"

	"github.com/rs/zerolog/log"
)

// GuildFilter selects the battles the target guild took part in. A player
// belongs to the target when its guild id equals ID, or, without an ID,
// when its guild name contains Name case-insensitively.
type GuildFilter struct {
	ID   string
	Name string
}

func (f GuildFilter) matches(p RawPlayer) bool {
	if f.ID != "" {
		return p.GuildID == f.ID
	}
	if f.Name == "" || p.GuildName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.GuildName), strings.ToLower(f.Name))
}

// Normalize converts raw gameinfo battles into battle records. Players are
// grouped by guild name with totals equal to the sums of their players.
// Guildless players are dropped, as are battles in which the target guild
// fielded nobody. Player order inside a guild follows the player ids so
// the output does not depend on map iteration.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func Normalize(raw []RawBattle, filter GuildFilter) []app.BattleRecord {
	records := make([]app.BattleRecord, 0, len(raw))

	for _, rb := range raw {
		ids := make([]string, 0, len(rb.Players))
		fielded := false
		for id, p := range rb.Players {
			ids = append(ids, id)
			if filter.matches(p) {
				fielded = true
			}
		}
		if !fielded {
			continue
		}
		sort.Strings(ids)

		players := make(map[string][]app.PlayerBattleStats)
		dropped := 0
		for _, id := range ids {
			p := rb.Players[id]
			if p.GuildName == "" {
				dropped++
				continue
			}
			players[p.GuildName] = append(players[p.GuildName], app.PlayerBattleStats{
				Name:   p.Name,
				Kills:  p.Kills,
				Deaths: p.Deaths,
				Fame:   p.KillFame,
			})
		}

		guilds := make(map[string]app.GuildBattleStats, len(players))
		for name, roster := range players {
			guilds[name] = app.NewGuildBattleStats(roster...)
		}

		if dropped > 0 {
			log.Debug().
				Int64("battle_id", rb.ID).
				Int("guildless_players", dropped).
				Msg("Dropped players without a guild")
		}

		records = append(records, app.BattleRecord{
			BattleID: strconv.FormatInt(rb.ID, 10),
			Time:     rb.StartTime.UTC(),
			Details:  app.BattleDetails{Guilds: guilds},
		})
	}

	return records
}
