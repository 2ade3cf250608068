package guild

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"albion_guild_stats/internal/app"
)

// Role is a guild's side in a battle relative to the target guild
type Role int

const (
	Enemy Role = iota
	Ally
	Self
)

// String returns the lower-case role name used in reports
func (r Role) String() string {
	switch r {
	case Self:
		return "self"
	case Ally:
		return "ally"
	default:
		return "enemy"
	}
}

// ErrAmbiguousGuildMatch is returned when more than one guild in a battle matches the target name
var ErrAmbiguousGuildMatch = errors.New("ambiguous guild match")

// Classify assigns a guild name to Self, Ally or Enemy by case-insensitive
// substring containment. Self is checked before Ally.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func Classify(guildName, target, alliance string) Role {
	name := strings.ToLower(guildName)
	if strings.Contains(name, strings.ToLower(target)) {
		return Self
	}
	if alliance != "" && strings.Contains(name, strings.ToLower(alliance)) {
		return Ally
	}
	return Enemy
}

// Member is one guild of a battle together with its classification
type Member struct {
	Name  string
	Role  Role
	Stats app.GuildBattleStats
}

// Partition is the classification of every guild in one battle
type Partition struct {
	// Self is nil when the target guild did not take part
	Self    *Member
	Allies  []Member
	Enemies []Member
}

// HasSelf reports whether the target guild took part in the battle
func (p Partition) HasSelf() bool {
	return p.Self != nil
}

// Friendly returns the Self guild followed by the allies
func (p Partition) Friendly() []Member {
	friendly := make([]Member, 0, len(p.Allies)+1)
	if p.Self != nil {
		friendly = append(friendly, *p.Self)
	}
	return append(friendly, p.Allies...)
}

// PartitionBattle classifies every guild of a battle. Guilds are visited in
// name order. More than one Self match yields ErrAmbiguousGuildMatch.
func PartitionBattle(battle app.BattleRecord, target, alliance string) (Partition, error) {
	names := make([]string, 0, len(battle.Details.Guilds))
	for name := range battle.Details.Guilds {
		names = append(names, name)
	}
	sort.Strings(names)

	var p Partition
	var selfMatches []string
	for _, name := range names {
		m := Member{Name: name, Role: Classify(name, target, alliance), Stats: battle.Details.Guilds[name]}
		switch m.Role {
		case Self:
			selfMatches = append(selfMatches, name)
			if p.Self == nil {
				self := m
				p.Self = &self
			}
		case Ally:
			p.Allies = append(p.Allies, m)
		default:
			p.Enemies = append(p.Enemies, m)
		}
	}

	if len(selfMatches) > 1 {
		return Partition{}, fmt.Errorf("battle %s: %q matches guilds %s: %w",
			battle.BattleID, target, strings.Join(selfMatches, ", "), ErrAmbiguousGuildMatch)
	}

	return p, nil
}

// FindSelf returns the target guild's stats in a battle, or false when absent
func FindSelf(battle app.BattleRecord, target, alliance string) (Member, bool, error) {
	p, err := PartitionBattle(battle, target, alliance)
	if err != nil {
		return Member{}, false, err
	}
	if p.Self == nil {
		return Member{}, false, nil
	}
	return *p.Self, true, nil
}
