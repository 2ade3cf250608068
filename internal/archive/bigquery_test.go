package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/config"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

var archiveTime = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

type fakeInserter struct {
	errs  []error
	calls int
	rows  []PlayerRow
}

func (f *fakeInserter) Put(ctx context.Context, src interface{}) error {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.rows = append(f.rows, src.([]PlayerRow)...)
	return nil
}

func newTestArchiver(inserter rowInserter) *BattleArchiver {
	return &BattleArchiver{
		inserter: inserter,
		retry: config.RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Millisecond,
			MaxWait:     time.Millisecond,
			Multiplier:  2,
		},
		now: func() time.Time { return archiveTime },
	}
}

func archiveBattles() []app.BattleRecord {
	return []app.BattleRecord{
		{
			BattleID: "101",
			Time:     time.Date(2024, 3, 9, 20, 0, 0, 0, time.FixedZone("CET", 3600)),
			Details: app.BattleDetails{Guilds: map[string]app.GuildBattleStats{
				"We Profit": app.NewGuildBattleStats(
					app.PlayerBattleStats{Name: "Ana", Kills: 5, Deaths: 1, Fame: 500},
					app.PlayerBattleStats{Name: "Bob", Kills: 1, Deaths: 2, Fame: 100},
				),
				"Blood Moon": app.NewGuildBattleStats(
					app.PlayerBattleStats{Name: "Xan", Kills: 3, Deaths: 6, Fame: 300},
				),
			}},
		},
		{
			BattleID: "102",
			Time:     time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			Details:  app.BattleDetails{Guilds: map[string]app.GuildBattleStats{}},
		},
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(archiveBattles(), archiveTime)

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Guilds in name order, players in battle order
	expected := []struct{ guild, player string }{
		{"Blood Moon", "Xan"},
		{"We Profit", "Ana"},
		{"We Profit", "Bob"},
	}
	for i, e := range expected {
		if rows[i].Guild != e.guild || rows[i].Player != e.player {
			t.Errorf("Row %d: expected %s/%s, got %s/%s", i, e.guild, e.player, rows[i].Guild, rows[i].Player)
		}
	}

	ana := rows[1]
	if ana.Kills != 5 || ana.Deaths != 1 || ana.Fame != 500 {
		t.Errorf("Unexpected stats for Ana: %+v", ana)
	}
	if ana.BattleTime.Location() != time.UTC || ana.BattleTime.Hour() != 19 {
		t.Errorf("Expected battle time in UTC, got %v", ana.BattleTime)
	}
	if !ana.ArchivedAt.Equal(archiveTime) {
		t.Errorf("Expected archived time %v, got %v", archiveTime, ana.ArchivedAt)
	}

	if got := BuildRows(nil, archiveTime); len(got) != 0 {
		t.Errorf("Expected no rows for no battles, got %d", len(got))
	}
}

func TestPlayerRowSave(t *testing.T) {
	row := PlayerRow{BattleID: "101", Guild: "We Profit", Player: "Ana", Kills: 5}

	values, insertID, err := row.Save()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if insertID != "101/We Profit/Ana" {
		t.Errorf("Expected insert id '101/We Profit/Ana', got %q", insertID)
	}
	if values["kills"] != 5 || values["player"] != "Ana" {
		t.Errorf("Unexpected values: %v", values)
	}
	if len(values) != 8 {
		t.Errorf("Expected 8 columns, got %d", len(values))
	}
}

func TestPlayerRowSchema(t *testing.T) {
	schema, err := bigquery.InferSchema(PlayerRow{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	values, _, _ := PlayerRow{}.Save()
	for _, field := range schema {
		if _, ok := values[field.Name]; !ok {
			t.Errorf("Schema field %s missing from saved values", field.Name)
		}
	}
	if len(schema) != len(values) {
		t.Errorf("Expected %d schema fields, got %d", len(values), len(schema))
	}
}

func TestArchiveBattles(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		inserter := &fakeInserter{}
		archiver := newTestArchiver(inserter)

		n, err := archiver.ArchiveBattles(context.Background(), archiveBattles())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if n != 3 || len(inserter.rows) != 3 {
			t.Errorf("Expected 3 rows archived, got %d (%d inserted)", n, len(inserter.rows))
		}
	})

	t.Run("NothingToArchive", func(t *testing.T) {
		inserter := &fakeInserter{}
		archiver := newTestArchiver(inserter)

		n, err := archiver.ArchiveBattles(context.Background(), nil)
		if err != nil || n != 0 {
			t.Errorf("Expected 0 rows and no error, got %d, %v", n, err)
		}
		if inserter.calls != 0 {
			t.Errorf("Expected no insert calls, got %d", inserter.calls)
		}
	})

	t.Run("RetriesTransientErrors", func(t *testing.T) {
		inserter := &fakeInserter{errs: []error{
			&googleapi.Error{Code: 503},
			&googleapi.Error{Code: 429},
		}}
		archiver := newTestArchiver(inserter)

		n, err := archiver.ArchiveBattles(context.Background(), archiveBattles())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if n != 3 || inserter.calls != 3 {
			t.Errorf("Expected success on third call, got n=%d calls=%d", n, inserter.calls)
		}
	})

	t.Run("RowErrorsNotRetried", func(t *testing.T) {
		inserter := &fakeInserter{errs: []error{
			bigquery.PutMultiError{{RowIndex: 0, Errors: bigquery.MultiError{errors.New("bad row")}}},
		}}
		archiver := newTestArchiver(inserter)

		_, err := archiver.ArchiveBattles(context.Background(), archiveBattles())
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		if inserter.calls != 1 {
			t.Errorf("Expected 1 call, got %d", inserter.calls)
		}
	})

	t.Run("GivesUp", func(t *testing.T) {
		inserter := &fakeInserter{errs: []error{
			&googleapi.Error{Code: 500},
			&googleapi.Error{Code: 500},
			&googleapi.Error{Code: 500},
		}}
		archiver := newTestArchiver(inserter)

		_, err := archiver.ArchiveBattles(context.Background(), archiveBattles())
		var apiErr *googleapi.Error
		if !errors.As(err, &apiErr) {
			t.Errorf("Expected wrapped googleapi error, got %v", err)
		}
		if inserter.calls != 3 {
			t.Errorf("Expected 3 calls, got %d", inserter.calls)
		}
	})
}

func TestArchiverClose(t *testing.T) {
	archiver := newTestArchiver(&fakeInserter{})
	if err := archiver.Close(); err != nil {
		t.Errorf("Expected no error closing archiver without client, got %v", err)
	}
}
