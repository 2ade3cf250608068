package albion

import "time"

// RawBattle is one battle as returned by the gameinfo battles endpoint.
// Only the fields the dashboard uses are decoded.
type RawBattle struct {
	ID         int64                `json:"id"`
	StartTime  time.Time            `json:"startTime"`
	EndTime    time.Time            `json:"endTime"`
	TotalFame  int                  `json:"totalFame"`
	TotalKills int                  `json:"totalKills"`
	Players    map[string]RawPlayer `json:"players"`
}

// RawPlayer is a participant entry keyed by player id in RawBattle.Players
type RawPlayer struct {
	Name         string `json:"name"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	KillFame     int    `json:"killFame"`
	GuildName    string `json:"guildName"`
	GuildID      string `json:"guildId"`
	AllianceName string `json:"allianceName"`
	AllianceID   string `json:"allianceId"`
}
