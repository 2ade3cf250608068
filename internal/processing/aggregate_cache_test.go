package processing

import (
	"errors"
	"sync"
	"testing"

	"albion_guild_stats/internal/domain/aggregate"
)

func TestCachedEngine_Empty(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())

	if v := cache.Dataset().Version; v != 0 {
		t.Errorf("Expected version 0 before install, got %d", v)
	}

	summary, err := cache.Summary()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.TotalBattles != 0 || summary.WinRate != 0 {
		t.Errorf("Expected zero summary, got %+v", summary)
	}

	players, err := cache.Leaderboard(aggregate.MetricKills, 1)
	if err != nil || players == nil || len(players) != 0 {
		t.Errorf("Expected empty non-nil leaderboard, got %#v, %v", players, err)
	}
}

func TestCachedEngine_HitAndMiss(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	dataset := cache.Install(testBattles())

	if dataset.Version != 1 || len(dataset.Battles) != 3 {
		t.Fatalf("Unexpected dataset: %+v", dataset)
	}

	first, err := cache.Summary()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cache.entries) != 1 {
		t.Errorf("Expected 1 cached entry after a miss, got %d", len(cache.entries))
	}

	second, err := cache.Summary()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first != second || len(cache.entries) != 1 {
		t.Errorf("Expected the cached summary, got %+v (entries %d)", second, len(cache.entries))
	}

	// Different parameters are different entries
	if _, err := cache.Top(aggregate.MetricKills, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := cache.Top(aggregate.MetricKills, 2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cache.entries) != 3 {
		t.Errorf("Expected 3 cached entries, got %d", len(cache.entries))
	}
}

func TestCachedEngine_InvalidatesOnInstall(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	cache.Install(testBattles())

	before, _ := cache.Summary()
	if before.TotalBattles != 2 {
		t.Fatalf("Expected 2 battles, got %d", before.TotalBattles)
	}

	dataset := cache.Install(testBattles()[:1])
	if dataset.Version != 2 {
		t.Errorf("Expected version 2, got %d", dataset.Version)
	}
	if len(cache.entries) != 0 {
		t.Errorf("Expected cache to be dropped, got %d entries", len(cache.entries))
	}

	after, _ := cache.Summary()
	if after.TotalBattles != 1 {
		t.Errorf("Expected summary of the new dataset, got %+v", after)
	}
}

func TestCachedEngine_ErrorsAreNotCached(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	cache.Install(testBattles())

	if _, err := cache.Battle("missing"); !errors.Is(err, aggregate.ErrBattleNotFound) {
		t.Errorf("Expected ErrBattleNotFound, got %v", err)
	}
	if _, err := cache.Top(aggregate.MetricKills, -1); err == nil {
		t.Error("Expected error for negative limit")
	}
	if len(cache.entries) != 0 {
		t.Errorf("Expected no cached entries after errors, got %d", len(cache.entries))
	}
}

func TestCachedEngine_Dashboard(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	cache.Install(testBattles())
	cache.Install(testBattles())

	d, err := cache.Dashboard()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Version != 2 {
		t.Errorf("Expected dashboard version 2, got %d", d.Version)
	}

	again, _ := cache.Dashboard()
	if again != d {
		t.Error("Expected the same cached dashboard")
	}
}

func TestCachedEngine_Concurrent(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	cache.Install(testBattles())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				cache.Install(testBattles())
				return
			}
			if _, err := cache.Daily(7); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if _, err := cache.Enemies(); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}(i)
	}
	wg.Wait()

	if cache.Dataset().Version != 5 {
		t.Errorf("Expected version 5 after 4 concurrent installs, got %d", cache.Dataset().Version)
	}
}

func TestCachedEngine_InstallNil(t *testing.T) {
	cache := NewCachedEngine(newTestEngine())
	dataset := cache.Install(nil)

	if dataset.Battles == nil {
		t.Error("Expected a non-nil battle slice")
	}

	rows, err := cache.Recent(7)
	if err != nil || len(rows) != 0 {
		t.Errorf("Expected no rows, got %v, %v", rows, err)
	}
}
