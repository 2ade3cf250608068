package albion

import "context"

// GameinfoAPI defines the interface for interacting with the Albion gameinfo API
// This separates infrastructure concerns from business logic
type GameinfoAPI interface {
	GetBattles(ctx context.Context, offset, limit int) ([]RawBattle, error)
	GetRecentBattles(ctx context.Context, pages int) ([]RawBattle, error)
}
