package osuapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the upstream api definitively reports that an
// entity does not exist (HTTP 404). Any other failure is transient and should
// be treated as "try again later", never as confirmation of absence.
var ErrNotFound = errors.New("osuapi: not found")

// Client is an HTTP client for the upstream beatmap catalogue.
// All requests go through a shared rate limiter and are retried a configured
// number of times; 404 responses short-circuit the retry loop.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
	limiter *rate.Limiter
	retries int
	logger  *zap.Logger
}

// NewClient creates a catalogue client from configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}

	return &Client{
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		baseURL: cfg.BaseURL,
		key:     cfg.Key,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		retries: retries,
		logger:  logger,
	}
}

// LookupBeatmap fetches a single beatmap by checksum or id.
// Returns ErrNotFound when the api confirms the map does not exist.
func (c *Client) LookupBeatmap(ctx context.Context, q Lookup) (*Beatmap, error) {
	params := url.Values{}
	if q.Checksum != "" {
		params.Set("checksum", q.Checksum)
	}
	if q.ID > 0 {
		params.Set("id", strconv.Itoa(q.ID))
	}

	var bmap Beatmap
	if err := c.getJSON(ctx, "/beatmaps/lookup?"+params.Encode(), &bmap); err != nil {
		return nil, err
	}

	return &bmap, nil
}

// GetBeatmapset fetches a whole set, including all difficulties.
// Returns ErrNotFound when the api confirms the set does not exist. A set
// with an empty Beatmaps list is returned as-is; callers must treat that as
// an authoritative empty answer.
func (c *Client) GetBeatmapset(ctx context.Context, setID int) (*Beatmapset, error) {
	var set Beatmapset
	if err := c.getJSON(ctx, "/beatmapsets/"+strconv.Itoa(setID), &set); err != nil {
		return nil, err
	}

	return &set, nil
}

// GetOsuFile downloads the raw .osu file for a beatmap.
func (c *Client) GetOsuFile(ctx context.Context, beatmapID int) ([]byte, error) {
	body, err := c.get(ctx, "/osu/"+strconv.Itoa(beatmapID))
	if err != nil {
		return nil, err
	}

	return body, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("osuapi: decode %s: %w", path, err)
	}

	return nil
}

// get performs a rate-limited GET with retries.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, path)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrNotFound) {
			// Definitive answer, retrying won't change it.
			return nil, err
		}

		lastErr = err
		c.logger.Warn("upstream api request failed",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("osuapi: %d attempts failed: %w", c.retries, lastErr)
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("osuapi: unexpected status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}
