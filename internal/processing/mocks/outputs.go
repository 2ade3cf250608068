package mocks

import (
	"context"

	"albion_guild_stats/internal/app"
)

// MockArchiver is a test double for archive.BattleArchiver
type MockArchiver struct {
	ArchiveBattlesError error

	ArchiveBattlesCalls [][]app.BattleRecord
}

func (m *MockArchiver) ArchiveBattles(ctx context.Context, battles []app.BattleRecord) (int, error) {
	m.ArchiveBattlesCalls = append(m.ArchiveBattlesCalls, battles)
	if m.ArchiveBattlesError != nil {
		return 0, m.ArchiveBattlesError
	}

	rows := 0
	for _, b := range battles {
		for _, g := range b.Details.Guilds {
			rows += len(g.Players)
		}
	}
	return rows, nil
}

// MockRenderer is a test double for dashboard.Renderer
type MockRenderer struct {
	RenderFileError error

	RenderFileCalled    bool
	RenderFilePath      string
	RenderFileDashboard *app.Dashboard
}

func (m *MockRenderer) RenderFile(path string, dashboard *app.Dashboard) error {
	m.RenderFileCalled = true
	m.RenderFilePath = path
	m.RenderFileDashboard = dashboard
	return m.RenderFileError
}

// MockDeployer is a test double for deployment.SSHDeployer
type MockDeployer struct {
	DeployFileError error

	DeployFileCalled bool
	DeployFileLocal  string
	DeployFileName   string
	DisconnectCalled bool
}

func (m *MockDeployer) DeployFile(localPath, filename string) error {
	m.DeployFileCalled = true
	m.DeployFileLocal = localPath
	m.DeployFileName = filename
	return m.DeployFileError
}

func (m *MockDeployer) Disconnect() error {
	m.DisconnectCalled = true
	return nil
}
