package processing

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"albion_guild_stats/internal/albion"
	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/domain/battle"
	"albion_guild_stats/internal/processing/mocks"
)

func testProcessorConfig() *app.Config {
	return &app.Config{
		GuildName:     "We Profit",
		GuildID:       "g1",
		SpreadsheetID: "sheet-123",
		DashboardFile: "public/dashboard.html",
	}
}

func testRawBattles() []albion.RawBattle {
	return []albion.RawBattle{
		{
			ID:        10,
			StartTime: testNow.Add(-time.Hour),
			Players: map[string]albion.RawPlayer{
				"a": {Name: "Ana", Kills: 3, Deaths: 1, KillFame: 300, GuildName: "We Profit", GuildID: "g1"},
				"b": {Name: "Bob", Kills: 2, Deaths: 0, KillFame: 200, GuildName: "We Profit", GuildID: "g1"},
				"x": {Name: "Xan", Kills: 1, Deaths: 5, KillFame: 100, GuildName: "Blood Moon", GuildID: "g2"},
			},
		},
		{
			ID:        11,
			StartTime: testNow.Add(-2 * time.Hour),
			Players: map[string]albion.RawPlayer{
				"x": {Name: "Xan", Kills: 1, GuildName: "Blood Moon", GuildID: "g2"},
			},
		},
	}
}

type testProcessor struct {
	processor *StatsProcessor
	feed      *mocks.MockFeedSource
	sheets    *mocks.MockSheetsClient
	archiver  *mocks.MockArchiver
	renderer  *mocks.MockRenderer
	deployer  *mocks.MockDeployer
}

func newTestProcessor(raw ...albion.RawBattle) *testProcessor {
	tp := &testProcessor{
		feed:     mocks.NewMockFeedSource(raw...),
		sheets:   mocks.NewMockSheetsClient(),
		archiver: &mocks.MockArchiver{},
		renderer: &mocks.MockRenderer{},
		deployer: &mocks.MockDeployer{},
	}
	tp.feed.BattlesResponse.FetchedAt = testNow

	outputs := Outputs{
		Sheets:   tp.sheets,
		Archiver: tp.archiver,
		Renderer: tp.renderer,
		Deployer: tp.deployer,
	}
	tp.processor = NewStatsProcessor(tp.feed, NewCachedEngine(newTestEngine()), outputs, testProcessorConfig())
	return tp
}

func TestStatsProcessor_Process(t *testing.T) {
	tp := newTestProcessor(testRawBattles()...)
	ctx := context.Background()

	result, err := tp.processor.Process(ctx, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !tp.feed.BattlesCalledWith {
		t.Error("Expected the refresh flag to reach the feed")
	}

	if result.Version != 1 || result.Battles != 1 {
		t.Errorf("Expected version 1 with 1 battle, got %+v", result)
	}
	expected := []string{"sheets", "archive", "dashboard", "deploy"}
	if !reflect.DeepEqual(result.Published, expected) {
		t.Errorf("Expected published %v, got %v", expected, result.Published)
	}

	if tp.sheets.UpdateDashboardSpreadsheetID != "sheet-123" {
		t.Errorf("Expected spreadsheet 'sheet-123', got '%s'", tp.sheets.UpdateDashboardSpreadsheetID)
	}
	d := tp.sheets.UpdateDashboardDashboard
	if d == nil || d.Summary.TotalKills != 5 || d.Summary.BattlesWon != 1 {
		t.Errorf("Unexpected dashboard: %+v", d)
	}
	if len(tp.sheets.AppendBattleLogRows) != 1 || tp.sheets.AppendBattleLogRows[0].BattleID != "10" {
		t.Errorf("Unexpected battle log rows: %+v", tp.sheets.AppendBattleLogRows)
	}

	if len(tp.archiver.ArchiveBattlesCalls) != 1 || len(tp.archiver.ArchiveBattlesCalls[0]) != 1 {
		t.Errorf("Expected one archive call with 1 battle, got %v", tp.archiver.ArchiveBattlesCalls)
	}

	if tp.renderer.RenderFilePath != "public/dashboard.html" || tp.renderer.RenderFileDashboard != d {
		t.Errorf("Unexpected render call: %s", tp.renderer.RenderFilePath)
	}
	if tp.deployer.DeployFileName != "dashboard.html" || tp.deployer.DeployFileLocal != "public/dashboard.html" {
		t.Errorf("Unexpected deploy call: %s -> %s", tp.deployer.DeployFileLocal, tp.deployer.DeployFileName)
	}
	if !tp.deployer.DisconnectCalled {
		t.Error("Expected the deploy connection to be closed")
	}

	// A second cycle does not archive the same battles again
	if _, err := tp.processor.Process(ctx, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(tp.archiver.ArchiveBattlesCalls) != 1 {
		t.Errorf("Expected no second archive call, got %d", len(tp.archiver.ArchiveBattlesCalls))
	}
	if v := tp.processor.engine.Dataset().Version; v != 2 {
		t.Errorf("Expected version 2, got %d", v)
	}
}

func TestStatsProcessor_FeedError(t *testing.T) {
	tp := newTestProcessor()
	tp.feed.BattlesError = errors.New("gameinfo down")

	if _, err := tp.processor.Process(context.Background(), false); err == nil {
		t.Fatal("Expected error, got nil")
	}

	if v := tp.processor.engine.Dataset().Version; v != 0 {
		t.Errorf("Expected no dataset to be installed, got version %d", v)
	}
	if tp.sheets.UpdateDashboardCalled {
		t.Error("Expected nothing to be published")
	}
}

func TestStatsProcessor_MalformedFeed(t *testing.T) {
	tp := newTestProcessor(testRawBattles()...)
	if _, err := tp.processor.Process(context.Background(), false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	broken := testRawBattles()
	broken[0].Players["a"] = albion.RawPlayer{Name: "Ana", Kills: -3, GuildName: "We Profit", GuildID: "g1"}
	tp.feed.BattlesResponse = &albion.FeedSnapshot{Battles: broken}

	_, err := tp.processor.Process(context.Background(), false)
	if !errors.Is(err, battle.ErrMalformedBattleRecord) {
		t.Fatalf("Expected ErrMalformedBattleRecord, got %v", err)
	}

	if v := tp.processor.engine.Dataset().Version; v != 1 {
		t.Errorf("Expected the previous dataset to stay installed, got version %d", v)
	}
}

func TestStatsProcessor_PublishFailures(t *testing.T) {
	t.Run("SheetsFailureDoesNotStopOtherOutputs", func(t *testing.T) {
		tp := newTestProcessor(testRawBattles()...)
		tp.sheets.UpdateDashboardError = errors.New("quota exceeded")

		result, err := tp.processor.Process(context.Background(), false)
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		if result == nil || !reflect.DeepEqual(result.Published, []string{"archive", "dashboard", "deploy"}) {
			t.Errorf("Unexpected result: %+v", result)
		}
		if tp.sheets.AppendBattleLogCalled {
			t.Error("Expected battle log to be skipped after a dashboard failure")
		}
	})

	t.Run("RenderFailureSkipsDeploy", func(t *testing.T) {
		tp := newTestProcessor(testRawBattles()...)
		tp.renderer.RenderFileError = errors.New("disk full")

		if _, err := tp.processor.Process(context.Background(), false); err == nil {
			t.Fatal("Expected error, got nil")
		}
		if tp.deployer.DeployFileCalled {
			t.Error("Expected deploy to be skipped")
		}
	})

	t.Run("ArchiveFailureRetriesNextCycle", func(t *testing.T) {
		tp := newTestProcessor(testRawBattles()...)
		tp.archiver.ArchiveBattlesError = errors.New("bigquery unavailable")

		if _, err := tp.processor.Process(context.Background(), false); err == nil {
			t.Fatal("Expected error, got nil")
		}

		tp.archiver.ArchiveBattlesError = nil
		if _, err := tp.processor.Process(context.Background(), false); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(tp.archiver.ArchiveBattlesCalls) != 2 {
			t.Errorf("Expected the archive to be retried, got %d calls", len(tp.archiver.ArchiveBattlesCalls))
		}
	})
}

func TestStatsProcessor_NoOutputs(t *testing.T) {
	feed := mocks.NewMockFeedSource(testRawBattles()...)
	processor := NewStatsProcessor(feed, NewCachedEngine(newTestEngine()), Outputs{}, testProcessorConfig())

	result, err := processor.Process(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Published) != 0 {
		t.Errorf("Expected nothing published, got %v", result.Published)
	}
}
