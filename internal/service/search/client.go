package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	searchmodel "github.com/soignetech/itsupport-chatbot/internal/model/search"
	"github.com/soignetech/itsupport-chatbot/internal/upstream"
)

type searchRequest struct {
	Search string `json:"search"`
	Top    int    `json:"top"`
	Select string `json:"select,omitempty"`
}

type searchResponse struct {
	Value []searchmodel.Document `json:"value"`
}

// Options tune the search client's retry behavior.
type Options struct {
	Timeout            time.Duration
	MaxAttempts        int
	RetryAfterFallback time.Duration
}

// Client queries the knowledge-base search collaborator.
//
// Retry policy: up to MaxAttempts tries per query. A 429 sleeps for the
// service's Retry-After hint (fallback when absent) and tries again; a
// timeout retries immediately; any other failure propagates at once. When the
// budget runs out the last error propagates — never a silently empty result —
// and the orchestrator owns degradation.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	opts     Options
	log      *zap.Logger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a search client.
func NewClient(endpoint, apiKey string, opts Options, log *zap.Logger) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryAfterFallback <= 0 {
		opts.RetryAfterFallback = 5 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{},
		opts:     opts,
		log:      log,
		sleep:    sleepContext,
	}
}

// Search returns up to top documents ranked by the collaborator. Ranking
// order is authoritative and preserved.
func (c *Client) Search(ctx context.Context, query string, top int) ([]searchmodel.Document, error) {
	var lastErr error

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		docs, err := c.doSearch(ctx, query, top)
		if err == nil {
			c.log.Info("search completed",
				zap.Int("documents", len(docs)),
				zap.Int("attempt", attempt))
			return docs, nil
		}
		lastErr = err

		var httpErr *upstream.HTTPError
		switch {
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests:
			wait := httpErr.RetryAfter
			if wait <= 0 {
				wait = c.opts.RetryAfterFallback
			}
			c.log.Warn("search rate limited, honoring retry hint",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt))
			if attempt == c.opts.MaxAttempts {
				break
			}
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		case upstream.IsTimeout(err):
			c.log.Error("search timed out",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.opts.MaxAttempts))
		default:
			// Not retryable.
			return nil, err
		}
	}

	return nil, fmt.Errorf("search attempts exhausted: %w", lastErr)
}

func (c *Client) doSearch(ctx context.Context, query string, top int) ([]searchmodel.Document, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(searchRequest{
		Search: query,
		Top:    top,
		Select: "title,content",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &upstream.HTTPError{
			Service:    "search",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %v: %w", err, upstream.ErrMalformedResponse)
	}
	return parsed.Value, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
