package app

import "time"

// BattleRecord is one normalized battle as produced by the ingestion layer.
// Battles are immutable once ingested.
type BattleRecord struct {
	BattleID string        `json:"battle_id"`
	Time     time.Time     `json:"time"`
	Details  BattleDetails `json:"details"`
}

// BattleDetails holds the per-guild breakdown of a battle
type BattleDetails struct {
	Guilds map[string]GuildBattleStats `json:"guilds"`
}

// GuildBattleStats represents one guild's participation in one battle.
// Totals must equal the sums of the player fields.
type GuildBattleStats struct {
	Players     []PlayerBattleStats `json:"players"`
	TotalKills  int                 `json:"total_kills"`
	TotalDeaths int                 `json:"total_deaths"`
	TotalFame   int                 `json:"total_fame"`
}

// PlayerBattleStats represents one player's result in one battle
type PlayerBattleStats struct {
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
	Fame   int    `json:"fame"`
}

// PlayerAggregate holds a player's cumulative stats across battles
type PlayerAggregate struct {
	Name      string  `json:"name"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Fame      int     `json:"fame"`
	Battles   int     `json:"battles"`
	KDRatio   float64 `json:"kd_ratio"`
	AvgKills  float64 `json:"avg_kills"`
	AvgDeaths float64 `json:"avg_deaths"`
}

// GuildAggregate holds a guild's cumulative stats across battles
type GuildAggregate struct {
	Name         string  `json:"name"`
	TotalBattles int     `json:"total_battles"`
	BattlesWon   int     `json:"battles_won"`
	WinRate      float64 `json:"win_rate"`
	TotalKills   int     `json:"total_kills"`
	TotalDeaths  int     `json:"total_deaths"`
	TotalFame    int     `json:"total_fame"`
	KDRatio      float64 `json:"kd_ratio"`
}

// DailyBucket holds one UTC calendar day of the target guild's activity
type DailyBucket struct {
	Date    time.Time `json:"date"`
	Kills   int       `json:"kills"`
	Deaths  int       `json:"deaths"`
	Fame    int       `json:"fame"`
	Battles int       `json:"battles"`
	Wins    int       `json:"wins"`
	KDRatio float64   `json:"kd_ratio"`
	WinRate float64   `json:"win_rate"`
}

// Outcome is the result of a single battle from the target guild's side
type Outcome struct {
	Won        bool    `json:"won"`
	FriendlyKD float64 `json:"friendly_kd"`
	EnemyKD    float64 `json:"enemy_kd"`
}

// GuildRow is one guild's line in a battle report
type GuildRow struct {
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Players int     `json:"players"`
	Kills   int     `json:"kills"`
	Deaths  int     `json:"deaths"`
	Fame    int     `json:"fame"`
	KDRatio float64 `json:"kd_ratio"`
}

// BattleReport is the detail view of a single battle
type BattleReport struct {
	BattleID   string              `json:"battle_id"`
	Time       time.Time           `json:"time"`
	GuildName  string              `json:"guild_name"`
	GuildKD    float64             `json:"guild_kd"`
	FriendlyKD float64             `json:"friendly_kd"`
	EnemyKD    float64             `json:"enemy_kd"`
	Victory    bool                `json:"victory"`
	Guilds     []GuildRow          `json:"guilds"`
	Players    []PlayerBattleStats `json:"players"`
}

// KDRatio divides kills by deaths with the denominator floored at 1
func KDRatio(kills, deaths int) float64 {
	return float64(kills) / float64(max(1, deaths))
}

// NewGuildBattleStats builds a guild entry whose totals are the sums of its players
func NewGuildBattleStats(players ...PlayerBattleStats) GuildBattleStats {
	g := GuildBattleStats{Players: players}
	for _, p := range players {
		g.TotalKills += p.Kills
		g.TotalDeaths += p.Deaths
		g.TotalFame += p.Fame
	}
	return g
}

// PlayerCount returns the number of players the guild fielded
func (g GuildBattleStats) PlayerCount() int {
	return len(g.Players)
}

// BattleRow is one line of the recent battles table, seen from the target guild
type BattleRow struct {
	BattleID   string    `json:"battle_id"`
	Time       time.Time `json:"time"`
	Players    int       `json:"players"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	Fame       int       `json:"fame"`
	KDRatio    float64   `json:"kd_ratio"`
	FriendlyKD float64   `json:"friendly_kd"`
	EnemyKD    float64   `json:"enemy_kd"`
	Victory    bool      `json:"victory"`
}

// Dashboard bundles every table published for one dataset version.
// Summary covers every battle; Headline only battles that pass the
// member threshold.
type Dashboard struct {
	GuildName     string            `json:"guild_name"`
	Version       uint64            `json:"version"`
	GeneratedAt   time.Time         `json:"generated_at"`
	WindowDays    int               `json:"window_days"`
	MinMembers    int               `json:"min_members"`
	Summary       GuildAggregate    `json:"summary"`
	Headline      GuildAggregate    `json:"headline"`
	ActivePlayers int               `json:"active_players"`
	Daily         []DailyBucket     `json:"daily"`
	Leaderboard   []PlayerAggregate `json:"leaderboard"`
	TopKillers    []PlayerAggregate `json:"top_killers"`
	TopDeaths     []PlayerAggregate `json:"top_deaths"`
	TopKD         []PlayerAggregate `json:"top_kd"`
	Enemies       []GuildAggregate  `json:"enemies"`
	Recent        []BattleRow       `json:"recent"`
}
