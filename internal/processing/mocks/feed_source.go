package mocks

import (
	"context"

	"albion_guild_stats/internal/albion"
)

// MockFeedSource is a test double for albion.CachedClient
type MockFeedSource struct {
	// Responses to return
	BattlesResponse *albion.FeedSnapshot

	// Errors to return
	BattlesError error

	// Call tracking
	BattlesCalled     int
	BattlesCalledWith bool
}

// NewMockFeedSource creates a mock feed returning the given raw battles
func NewMockFeedSource(battles ...albion.RawBattle) *MockFeedSource {
	return &MockFeedSource{BattlesResponse: &albion.FeedSnapshot{Battles: battles}}
}

func (m *MockFeedSource) Battles(ctx context.Context, refresh bool) (*albion.FeedSnapshot, error) {
	m.BattlesCalled++
	m.BattlesCalledWith = refresh
	return m.BattlesResponse, m.BattlesError
}
