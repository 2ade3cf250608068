package processing

import (
	"context"

	"albion_guild_stats/internal/albion"
	"albion_guild_stats/internal/app"
)

// FeedSourceInterface defines how StatsProcessor obtains the raw battle feed
type FeedSourceInterface interface {
	Battles(ctx context.Context, refresh bool) (*albion.FeedSnapshot, error)
}

// SheetsClientInterface defines the sheets API client methods used by StatsProcessor
type SheetsClientInterface interface {
	UpdateDashboard(ctx context.Context, spreadsheetID string, dashboard *app.Dashboard) error
	AppendBattleLog(ctx context.Context, spreadsheetID string, rows []app.BattleRow) (int, error)
}

// ArchiverInterface defines the raw battle archive used by StatsProcessor
type ArchiverInterface interface {
	ArchiveBattles(ctx context.Context, battles []app.BattleRecord) (int, error)
}

// DashboardRendererInterface writes the HTML dashboard to a file
type DashboardRendererInterface interface {
	RenderFile(path string, dashboard *app.Dashboard) error
}

// DeployerInterface uploads a rendered file to the web host
type DeployerInterface interface {
	DeployFile(localPath, filename string) error
	Disconnect() error
}
