package processing

import (
	"albion_guild_stats/internal/albion"
	"albion_guild_stats/internal/archive"
	"albion_guild_stats/internal/dashboard"
	"albion_guild_stats/internal/deployment"
	"albion_guild_stats/internal/sheets"
)

// Compile-time interface compliance checks
// These will cause compilation errors if the types don't implement the interfaces

var (
	_ FeedSourceInterface        = (*albion.CachedClient)(nil)
	_ SheetsClientInterface      = (*sheets.DashboardWriter)(nil)
	_ ArchiverInterface          = (*archive.BattleArchiver)(nil)
	_ DashboardRendererInterface = (*dashboard.Renderer)(nil)
	_ DeployerInterface          = (*deployment.SSHDeployer)(nil)
)
