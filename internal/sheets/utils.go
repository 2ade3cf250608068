package sheets

import (
	"fmt"
	"strings"
	"time"
)

// sheetTimeFormat is a layout Google Sheets parses as a date-time with USER_ENTERED
const sheetTimeFormat = "2006-01-02 15:04:05"

// quoteSheet returns an A1 sheet reference, quoted when the name needs it
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!-") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// sheetRange builds an A1 range such as 'Enemy Guilds'!A1:F20
func sheetRange(sheetName, cells string) string {
	return quoteSheet(sheetName) + "!" + cells
}

// columnLetter converts a 1-based column index to its A1 letters
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(sheetTimeFormat)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// formatRatio rounds to two decimals so sheets do not show float noise
func formatRatio(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

func formatResult(victory bool) string {
	if victory {
		return "Victory"
	}
	return "Defeat"
}
