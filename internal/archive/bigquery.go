package archive

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"albion_guild_stats/internal/app"
	"albion_guild_stats/internal/config"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// PlayerRow is one player's line in one battle as stored in BigQuery
type PlayerRow struct {
	BattleID   string    `bigquery:"battle_id"`
	BattleTime time.Time `bigquery:"battle_time"`
	Guild      string    `bigquery:"guild"`
	Player     string    `bigquery:"player"`
	Kills      int       `bigquery:"kills"`
	Deaths     int       `bigquery:"deaths"`
	Fame       int       `bigquery:"fame"`
	ArchivedAt time.Time `bigquery:"archived_at"`
}

// Save implements bigquery.ValueSaver. The insert id makes repeated
// inserts of the same player line collapse on the BigQuery side.
func (r PlayerRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"battle_id":   r.BattleID,
		"battle_time": r.BattleTime,
		"guild":       r.Guild,
		"player":      r.Player,
		"kills":       r.Kills,
		"deaths":      r.Deaths,
		"fame":        r.Fame,
		"archived_at": r.ArchivedAt,
	}, r.InsertID(), nil
}

// InsertID identifies the row for best-effort deduplication
func (r PlayerRow) InsertID() string {
	return r.BattleID + "/" + r.Guild + "/" + r.Player
}

// rowInserter is the part of *bigquery.Inserter the archiver needs
type rowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// BattleArchiver streams battle rows into a BigQuery table
type BattleArchiver struct {
	client   *bigquery.Client
	table    *bigquery.Table
	inserter rowInserter
	retry    config.RetryConfig
	now      func() time.Time
}

// NewBattleArchiver connects to BigQuery and creates the table if it is missing
func NewBattleArchiver(ctx context.Context, projectID, dataset, table, credentialsFile string) (*BattleArchiver, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	t := client.Dataset(dataset).Table(table)
	if err := ensureTable(ctx, t); err != nil {
		client.Close()
		return nil, err
	}

	return &BattleArchiver{
		client:   client,
		table:    t,
		inserter: t.Inserter(),
		retry:    config.DefaultResilienceConfig.ArchiveInsert,
		now:      time.Now,
	}, nil
}

func ensureTable(ctx context.Context, t *bigquery.Table) error {
	_, err := t.Metadata(ctx)
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("failed to read table metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(PlayerRow{})
	if err != nil {
		return fmt.Errorf("failed to infer archive schema: %w", err)
	}

	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "battle_time",
		},
	}
	if err := t.Create(ctx, meta); err != nil {
		return fmt.Errorf("failed to create archive table: %w", err)
	}

	log.Info().
		Str("dataset", t.DatasetID).
		Str("table", t.TableID).
		Msg("Created archive table")

	return nil
}

// ArchiveBattles writes every player line of the given battles and
// returns the number of rows inserted.
func (a *BattleArchiver) ArchiveBattles(ctx context.Context, battles []app.BattleRecord) (int, error) {
	rows := BuildRows(battles, a.now().UTC())
	if len(rows) == 0 {
		return 0, nil
	}

	attempts := max(1, a.retry.MaxAttempts)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := a.retry.Backoff(attempt - 1)
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying archive insert")

			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(wait):
			}
		}

		err = a.put(ctx, rows)
		if err == nil || !retryable(err) {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to archive %d rows: %w", len(rows), err)
	}

	log.Info().
		Int("battles", len(battles)).
		Int("rows", len(rows)).
		Msg("Archived battles")

	return len(rows), nil
}

func (a *BattleArchiver) put(ctx context.Context, rows []PlayerRow) error {
	if a.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.retry.Timeout)
		defer cancel()
	}
	return a.inserter.Put(ctx, rows)
}

// retryable reports whether an insert failure is transient. Row level
// rejections are not retried.
func retryable(err error) bool {
	var multi bigquery.PutMultiError
	if errors.As(err, &multi) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Close releases the BigQuery client
func (a *BattleArchiver) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// BuildRows flattens battles into one row per player per guild.
// Pure function: No I/O operations, fully testable with direct inputs.
func BuildRows(battles []app.BattleRecord, archivedAt time.Time) []PlayerRow {
	var rows []PlayerRow
	for _, b := range battles {
		for _, guild := range sortedGuilds(b.Details.Guilds) {
			for _, p := range b.Details.Guilds[guild].Players {
				rows = append(rows, PlayerRow{
					BattleID:   b.BattleID,
					BattleTime: b.Time.UTC(),
					Guild:      guild,
					Player:     p.Name,
					Kills:      p.Kills,
					Deaths:     p.Deaths,
					Fame:       p.Fame,
					ArchivedAt: archivedAt,
				})
			}
		}
	}
	return rows
}

func sortedGuilds(guilds map[string]app.GuildBattleStats) []string {
	return slices.Sorted(maps.Keys(guilds))
}
