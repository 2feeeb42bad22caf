package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	searchmodel "github.com/soignetech/itsupport-chatbot/internal/model/search"
	"github.com/soignetech/itsupport-chatbot/internal/upstream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-key", opts, zap.NewNop())

	var sleeps []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return client, &sleeps
}

func writeDocs(w http.ResponseWriter, docs []searchmodel.Document) {
	_ = json.NewEncoder(w).Encode(searchResponse{Value: docs})
}

func TestSearchSuccess(t *testing.T) {
	var gotPayload searchRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		writeDocs(w, []searchmodel.Document{
			{Title: "VPN Guide", Content: "Connect via the portal."},
			{Content: "Untitled passage."},
		})
	}, Options{})

	docs, err := client.Search(context.Background(), "vpn access", 3)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "vpn access", gotPayload.Search)
	assert.Equal(t, 3, gotPayload.Top)
	assert.Equal(t, "title,content", gotPayload.Select)
	assert.Equal(t, "VPN Guide", docs[0].Title)
}

func TestSearchRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeDocs(w, []searchmodel.Document{{Title: "Doc", Content: "text"}})
	}, Options{})

	docs, err := client.Search(context.Background(), "printer", 3)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{7 * time.Second}, *sleeps)
}

func TestSearchRateLimitFallbackHint(t *testing.T) {
	attempts := 0
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeDocs(w, nil)
	}, Options{RetryAfterFallback: 5 * time.Second})

	_, err := client.Search(context.Background(), "printer", 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Second}, *sleeps)
}

func TestSearchExhaustionPropagates(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}, Options{MaxAttempts: 3})

	docs, err := client.Search(context.Background(), "printer", 3)
	require.Error(t, err)
	assert.Nil(t, docs)
	assert.Equal(t, 3, attempts)

	var httpErr *upstream.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestSearchNonRetryableFailsFast(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}, Options{})

	_, err := client.Search(context.Background(), "printer", 3)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var httpErr *upstream.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestSearchTimeoutRetriesThenPropagates(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		time.Sleep(100 * time.Millisecond)
	}, Options{Timeout: 10 * time.Millisecond, MaxAttempts: 2})

	_, err := client.Search(context.Background(), "printer", 3)
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, upstream.IsTimeout(err))
}

func TestSearchMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}, Options{})

	_, err := client.Search(context.Background(), "printer", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrMalformedResponse)
	// The underlying parse failure stays in the message for the log.
	assert.Contains(t, err.Error(), "invalid character")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1"))
}
