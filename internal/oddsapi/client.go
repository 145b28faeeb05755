// Package oddsapi provides a client for The Odds API v4.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	"github.com/Randysweatpants/GambleBotAPI/internal/metrics"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// Provider fetches bookmaker odds for a sport. Implemented by Client and by
// test fakes.
type Provider interface {
	FetchOdds(ctx context.Context, sport string) ([]models.Event, error)
	Close() error
}

// Client talks to The Odds API v4 with retries, rate limiting and caching.
type Client struct {
	http       *RateLimitedHTTPClient
	cache      *OddsCache
	baseURL    string
	apiKey     string
	regions    []string
	markets    []string
	bookmakers []string
	logger     *logrus.Logger

	// quotaMu guards the usage counters; fetches write them while the
	// health server reads them from its own goroutine.
	quotaMu        sync.RWMutex
	quotaRemaining int
	quotaUsed      int
}

// NewClient creates a new odds API client from configuration.
func NewClient(cfg config.OddsAPIConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimitPerSec > 0 {
		httpCfg.RateLimit = cfg.RateLimitPerSec
	}

	markets := cfg.Markets
	if len(markets) == 0 {
		markets = models.DefaultMarkets
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Client{
		http:       NewRateLimitedHTTPClient(httpCfg, log.New(logger.WriterLevel(logrus.DebugLevel), "", 0)),
		cache:      NewOddsCache(ttl),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		regions:    cfg.Regions,
		markets:    markets,
		bookmakers: cfg.Bookmakers,
		logger:     logger,
	}, nil
}

// FetchOdds returns current events with bookmaker prices for a sport.
// Responses are served from cache within the configured TTL.
func (c *Client) FetchOdds(ctx context.Context, sport string) ([]models.Event, error) {
	key := CacheKey{
		Sport:      sport,
		Regions:    c.regions,
		Markets:    c.markets,
		Bookmakers: c.bookmakers,
	}
	if events := c.cache.Get(key); events != nil {
		c.logger.WithFields(logrus.Fields{
			"sport":  sport,
			"events": len(events),
		}).Debug("Odds served from cache")
		return events, nil
	}

	start := time.Now()
	events, err := c.fetchOdds(ctx, sport)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordOddsRequest("error", elapsed)
		return nil, err
	}
	metrics.RecordOddsRequest("success", elapsed)

	c.cache.Set(key, events)
	return events, nil
}

func (c *Client) fetchOdds(ctx context.Context, sport string) ([]models.Event, error) {
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds", c.baseURL, url.PathEscape(sport))

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("oddsFormat", "american")
	q.Set("regions", strings.Join(c.regions, ","))
	q.Set("markets", strings.Join(c.markets, ","))
	if len(c.bookmakers) > 0 {
		q.Set("bookmakers", strings.Join(c.bookmakers, ","))
	}

	resp, err := c.http.Get(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching odds for %s: %w", sport, err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrQuotaExceeded
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var events []models.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding odds response for %s: %w", sport, err)
	}

	c.logger.WithFields(logrus.Fields{
		"sport":           sport,
		"events":          len(events),
		"quota_remaining": c.QuotaRemaining(),
	}).Info("Fetched odds")

	return events, nil
}

// recordQuota captures the usage headers the odds API returns on every call.
func (c *Client) recordQuota(resp *http.Response) {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	if v := resp.Header.Get("X-Requests-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.quotaRemaining = n
			metrics.UpdateQuotaRemaining(float64(n))
		}
	}
	if v := resp.Header.Get("X-Requests-Used"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.quotaUsed = n
		}
	}
}

// QuotaRemaining returns the last reported remaining request quota.
func (c *Client) QuotaRemaining() int {
	c.quotaMu.RLock()
	defer c.quotaMu.RUnlock()
	return c.quotaRemaining
}

// QuotaUsed returns the last reported used request count.
func (c *Client) QuotaUsed() int {
	c.quotaMu.RLock()
	defer c.quotaMu.RUnlock()
	return c.quotaUsed
}

// ClearCache drops all cached odds responses.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.http.Close()
}
