package sheets

import (
	"context"
	"fmt"
	"slices"

	"albion_guild_stats/internal/app"

	"github.com/rs/zerolog/log"
)

// Tab names written by DashboardWriter
const (
	SummaryTab = "Summary"
	PlayersTab = "Players"
	DailyTab   = "Daily"
	EnemiesTab = "Enemies"
	BattlesTab = "Battles"
)

var battleLogHeader = []interface{}{
	"Battle ID", "Time", "Players", "Kills", "Deaths", "Fame", "K/D", "Friendly K/D", "Enemy K/D", "Result",
}

// DashboardWriter publishes dashboard tables to a spreadsheet.
// The table tabs are rewritten on every cycle; the battle log only grows.
type DashboardWriter struct {
	api SheetsAPI
}

// NewDashboardWriter creates a dashboard writer on top of the given API client
func NewDashboardWriter(api SheetsAPI) *DashboardWriter {
	return &DashboardWriter{api: api}
}

// UpdateDashboard rewrites the summary, player, daily and enemy tabs
func (w *DashboardWriter) UpdateDashboard(ctx context.Context, spreadsheetID string, dashboard *app.Dashboard) error {
	if dashboard == nil {
		return fmt.Errorf("dashboard is nil")
	}

	tabs := []struct {
		name string
		rows [][]interface{}
	}{
		{SummaryTab, SummaryRows(dashboard)},
		{PlayersTab, PlayerRows(dashboard.Leaderboard)},
		{DailyTab, DailyRows(dashboard.Daily)},
		{EnemiesTab, EnemyRows(dashboard.Enemies)},
	}

	for _, tab := range tabs {
		if err := w.replaceTab(ctx, spreadsheetID, tab.name, tab.rows); err != nil {
			return err
		}
	}

	log.Info().
		Str("guild", dashboard.GuildName).
		Uint64("version", dashboard.Version).
		Int("players", len(dashboard.Leaderboard)).
		Int("enemies", len(dashboard.Enemies)).
		Msg("Updated sheets dashboard")

	return nil
}

func (w *DashboardWriter) replaceTab(ctx context.Context, spreadsheetID, name string, rows [][]interface{}) error {
	if err := w.ensureSheet(ctx, spreadsheetID, name); err != nil {
		return err
	}

	if err := w.api.ClearRange(ctx, spreadsheetID, sheetRange(name, "A:Z")); err != nil {
		return fmt.Errorf("failed to clear %s sheet: %w", name, err)
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if err := w.api.EnsureSheetCapacity(ctx, spreadsheetID, name, len(rows), cols); err != nil {
		return fmt.Errorf("failed to resize %s sheet: %w", name, err)
	}

	cells := fmt.Sprintf("A1:%s%d", columnLetter(max(cols, 1)), max(len(rows), 1))
	if err := w.api.UpdateRange(ctx, spreadsheetID, sheetRange(name, cells), rows); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", name, err)
	}

	log.Debug().
		Str("sheet_name", name).
		Int("rows", len(rows)).
		Msg("Wrote dashboard tab")

	return nil
}

func (w *DashboardWriter) ensureSheet(ctx context.Context, spreadsheetID, name string) error {
	exists, err := w.api.SheetExists(ctx, spreadsheetID, name)
	if err != nil {
		return fmt.Errorf("failed to check if %s sheet exists: %w", name, err)
	}
	if exists {
		return nil
	}

	log.Info().
		Str("sheet_name", name).
		Msg("Creating sheet")

	if err := w.api.CreateSheet(ctx, spreadsheetID, name); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", name, err)
	}
	return nil
}

// AppendBattleLog appends rows for battles not already in the log and
// returns how many were written. Rows go in oldest first.
func (w *DashboardWriter) AppendBattleLog(ctx context.Context, spreadsheetID string, rows []app.BattleRow) (int, error) {
	if err := w.ensureSheet(ctx, spreadsheetID, BattlesTab); err != nil {
		return 0, err
	}

	existing, err := w.api.ReadSheet(ctx, spreadsheetID, sheetRange(BattlesTab, "A:A"))
	if err != nil {
		return 0, fmt.Errorf("failed to read battle log: %w", err)
	}

	logged := ExistingBattleIDs(existing)

	var pending []app.BattleRow
	for _, row := range rows {
		if logged[row.BattleID] {
			continue
		}
		logged[row.BattleID] = true
		pending = append(pending, row)
	}

	if len(pending) == 0 {
		log.Debug().Msg("Battle log already up to date")
		return 0, nil
	}

	slices.SortStableFunc(pending, func(a, b app.BattleRow) int {
		return a.Time.Compare(b.Time)
	})

	values := make([][]interface{}, 0, len(pending)+1)
	if len(existing) == 0 {
		values = append(values, battleLogHeader)
	}
	for _, row := range pending {
		values = append(values, BattleLogRow(row))
	}

	if err := w.api.AppendRows(ctx, spreadsheetID, sheetRange(BattlesTab, "A1"), values); err != nil {
		return 0, fmt.Errorf("failed to append battle log: %w", err)
	}

	log.Info().
		Int("appended", len(pending)).
		Int("already_logged", len(existing)).
		Msg("Appended battles to log")

	return len(pending), nil
}

// ExistingBattleIDs collects the battle ids in the first column of the log,
// skipping the header row and blank cells.
func ExistingBattleIDs(rows [][]interface{}) map[string]bool {
	ids := make(map[string]bool, len(rows))
	for i, row := range rows {
		cell := CellAt(row, 0)
		if cell.IsEmpty() {
			continue
		}
		if i == 0 && cell.String() == battleLogHeader[0] {
			continue
		}
		ids[cell.String()] = true
	}
	return ids
}

// SummaryRows lays out the summary tab: headline cards then the all-battle totals.
func SummaryRows(d *app.Dashboard) [][]interface{} {
	rows := [][]interface{}{
		{"Guild Summary", d.GuildName},
		{"Generated", formatTime(d.GeneratedAt)},
		{"Dataset Version", d.Version},
		{"Window (days)", d.WindowDays},
		{},
		{"", fmt.Sprintf("Battles with %d+ members", d.MinMembers), "All battles"},
		{"Battles", d.Headline.TotalBattles, d.Summary.TotalBattles},
		{"Wins", d.Headline.BattlesWon, d.Summary.BattlesWon},
		{"Win Rate", formatPercent(d.Headline.WinRate), formatPercent(d.Summary.WinRate)},
		{"Kills", d.Headline.TotalKills, d.Summary.TotalKills},
		{"Deaths", d.Headline.TotalDeaths, d.Summary.TotalDeaths},
		{"Fame", d.Headline.TotalFame, d.Summary.TotalFame},
		{"K/D", formatRatio(d.Headline.KDRatio), formatRatio(d.Summary.KDRatio)},
		{},
		{"Active Players", d.ActivePlayers},
		{},
		{"Top Killers", "Kills", "Top Deaths", "Deaths", "Top K/D", "K/D"},
	}

	n := max(len(d.TopKillers), len(d.TopDeaths), len(d.TopKD))
	for i := range n {
		row := []interface{}{"", "", "", "", "", ""}
		if i < len(d.TopKillers) {
			row[0], row[1] = d.TopKillers[i].Name, d.TopKillers[i].Kills
		}
		if i < len(d.TopDeaths) {
			row[2], row[3] = d.TopDeaths[i].Name, d.TopDeaths[i].Deaths
		}
		if i < len(d.TopKD) {
			row[4], row[5] = d.TopKD[i].Name, formatRatio(d.TopKD[i].KDRatio)
		}
		rows = append(rows, row)
	}
	return rows
}

// PlayerRows lays out the player leaderboard tab
func PlayerRows(players []app.PlayerAggregate) [][]interface{} {
	rows := [][]interface{}{
		{"Player", "Battles", "Kills", "Deaths", "Fame", "K/D", "Avg Kills", "Avg Deaths"},
	}
	for _, p := range players {
		rows = append(rows, []interface{}{
			p.Name, p.Battles, p.Kills, p.Deaths, p.Fame,
			formatRatio(p.KDRatio), formatRatio(p.AvgKills), formatRatio(p.AvgDeaths),
		})
	}
	return rows
}

// DailyRows lays out the daily activity tab
func DailyRows(days []app.DailyBucket) [][]interface{} {
	rows := [][]interface{}{
		{"Date", "Battles", "Wins", "Win Rate", "Kills", "Deaths", "Fame", "K/D"},
	}
	for _, d := range days {
		rows = append(rows, []interface{}{
			formatDate(d.Date), d.Battles, d.Wins, formatPercent(d.WinRate),
			d.Kills, d.Deaths, d.Fame, formatRatio(d.KDRatio),
		})
	}
	return rows
}

// EnemyRows lays out the enemy guilds tab
func EnemyRows(enemies []app.GuildAggregate) [][]interface{} {
	rows := [][]interface{}{
		{"Guild", "Battles", "Won", "Win Rate", "Kills", "Deaths", "Fame", "K/D"},
	}
	for _, e := range enemies {
		rows = append(rows, []interface{}{
			e.Name, e.TotalBattles, e.BattlesWon, formatPercent(e.WinRate),
			e.TotalKills, e.TotalDeaths, e.TotalFame, formatRatio(e.KDRatio),
		})
	}
	return rows
}

// BattleLogRow is one line of the battle log tab
func BattleLogRow(row app.BattleRow) []interface{} {
	return []interface{}{
		row.BattleID, formatTime(row.Time), row.Players, row.Kills, row.Deaths, row.Fame,
		formatRatio(row.KDRatio), formatRatio(row.FriendlyKD), formatRatio(row.EnemyKD),
		formatResult(row.Victory),
	}
}
