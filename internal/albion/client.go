package albion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"albion_guild_stats/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBaseURL is the public gameinfo API
	DefaultBaseURL = "https://gameinfo.albiononline.com/api/gameinfo"

	// PageSize is the largest page the battles endpoint returns
	PageSize = 51

	// maxConcurrentPages bounds parallel page fetches
	maxConcurrentPages = 4
)

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed when repeated
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	baseURL string
	guildID string
	sort    string
	client  *http.Client
	retry   config.RetryConfig
	tracker *APICallTracker
}

// NewClient creates a gameinfo client for the given guild id. An empty
// guild id fetches the unfiltered battle feed.
func NewClient(guildID string, tracker *APICallTracker) *Client {
	return NewClientWithConfig(DefaultBaseURL, guildID, config.DefaultResilienceConfig.Gameinfo, tracker)
}

// NewClientWithConfig creates a client against an arbitrary base URL with explicit retry behavior
func NewClientWithConfig(baseURL, guildID string, retry config.RetryConfig, tracker *APICallTracker) *Client {
	if tracker == nil {
		tracker = NewAPICallTracker()
	}
	return &Client{
		baseURL: baseURL,
		guildID: guildID,
		sort:    "recent",
		client: &http.Client{
			Timeout: retry.Timeout,
		},
		retry:   retry,
		tracker: tracker,
	}
}

// makeAPIRequest creates and executes an HTTP GET request to the gameinfo API
func (c *Client) makeAPIRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	gameinfoRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Debug().
			Err(err).
			Str("url", reqURL).
			Msg("API request failed")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// handleAPIResponse processes the HTTP response and returns the body bytes
func (c *Client) handleAPIResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// fetch performs a GET with retries on transport errors, 429 and 5xx
func (c *Client) fetch(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	attempts := max(1, c.retry.MaxAttempts)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := c.retry.Backoff(attempt - 1)
			gameinfoRetries.Inc()
			log.Warn().
				Err(lastErr).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying gameinfo request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		c.tracker.RecordCall(endpoint)

		resp, err := c.makeAPIRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		body, err := c.handleAPIResponse(resp)
		if err == nil {
			return body, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (c *Client) battlesURL(offset, limit int) string {
	q := url.Values{}
	q.Set("range", "week")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", c.sort)
	if c.guildID != "" {
		q.Set("guildId", c.guildID)
	}
	return c.baseURL + "/battles?" + q.Encode()
}

// GetBattles fetches one page of the battle feed
func (c *Client) GetBattles(ctx context.Context, offset, limit int) ([]RawBattle, error) {
	if offset < 0 || limit < 1 || limit > PageSize {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}

	reqURL := c.battlesURL(offset, limit)
	log.Debug().
		Str("url", reqURL).
		Int("offset", offset).
		Int("limit", limit).
		Msg("Fetching battles")

	body, err := c.fetch(ctx, "battles", reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch battles at offset %d: %w", offset, err)
	}

	var battles []RawBattle
	if err := json.Unmarshal(body, &battles); err != nil {
		return nil, fmt.Errorf("failed to decode battles response: %w", err)
	}

	log.Debug().
		Int("battles_count", len(battles)).
		Int("offset", offset).
		Msg("Successfully fetched battles")

	return battles, nil
}

// GetRecentBattles fetches the first pages of the feed in parallel and
// merges them newest first. Battles that shifted between pages while
// fetching are deduplicated by id.
func (c *Client) GetRecentBattles(ctx context.Context, pages int) ([]RawBattle, error) {
	if pages < 1 {
		return nil, fmt.Errorf("pages must be at least 1, got %d", pages)
	}

	results := make([][]RawBattle, pages)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			page, err := c.GetBattles(gCtx, i*PageSize, PageSize)
			if err != nil {
				return err
			}
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergePages(results)

	log.Info().
		Int("pages", pages).
		Int("battles", len(merged)).
		Msg("Fetched recent battles")

	return merged, nil
}

func mergePages(pages [][]RawBattle) []RawBattle {
	seen := make(map[int64]bool)
	merged := make([]RawBattle, 0)

	for _, page := range pages {
		for _, b := range page {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			merged = append(merged, b)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.After(merged[j].StartTime)
	})

	return merged
}
