package mocks

import (
	"context"

	"albion_guild_stats/internal/app"
)

// MockSheetsClient is a test double for the sheets.Client
type MockSheetsClient struct {
	// Responses to return
	AppendBattleLogResponse int

	// Errors to return
	UpdateDashboardError error
	AppendBattleLogError error

	// Call tracking
	UpdateDashboardCalled bool
	AppendBattleLogCalled bool

	// Call parameters tracking
	UpdateDashboardSpreadsheetID string
	UpdateDashboardDashboard     *app.Dashboard
	AppendBattleLogRows          []app.BattleRow
}

// NewMockSheetsClient creates a new mock sheets client
func NewMockSheetsClient() *MockSheetsClient {
	return &MockSheetsClient{}
}

func (m *MockSheetsClient) UpdateDashboard(ctx context.Context, spreadsheetID string, dashboard *app.Dashboard) error {
	m.UpdateDashboardCalled = true
	m.UpdateDashboardSpreadsheetID = spreadsheetID
	m.UpdateDashboardDashboard = dashboard
	return m.UpdateDashboardError
}

func (m *MockSheetsClient) AppendBattleLog(ctx context.Context, spreadsheetID string, rows []app.BattleRow) (int, error) {
	m.AppendBattleLogCalled = true
	m.AppendBattleLogRows = rows
	if m.AppendBattleLogError != nil {
		return 0, m.AppendBattleLogError
	}
	if m.AppendBattleLogResponse == 0 {
		return len(rows), nil
	}
	return m.AppendBattleLogResponse, nil
}
