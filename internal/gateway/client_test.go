package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-key", 2*time.Second, 200*time.Millisecond)
}

func TestHealthOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":            "ok",
			"timestamp":         "2024-01-01T00:00:00Z",
			"tracker_running":   true,
			"tracked_positions": 3,
		})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Health(context.Background())

	require.True(t, result.OK())
	assert.True(t, result.Payload.Healthy())
	assert.True(t, result.Payload.TrackerRunning)
	assert.Equal(t, 3, result.Payload.TrackedPositions)
	assert.Greater(t, result.Payload.Latency, time.Duration(0))
}

func TestHealthDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "degraded"})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Health(context.Background())

	// Transport-level success carrying a business-level degraded flag;
	// this must not be a Failure.
	require.True(t, result.OK())
	assert.False(t, result.Payload.Healthy())
	assert.Equal(t, "degraded", result.Payload.Status)
}

func TestHealthTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Health(context.Background())

	require.False(t, result.OK())
	assert.Equal(t, FailTimeout, result.Failure.Kind)
}

func TestBuySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/buy", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "SomeMint", body["token_mint"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"signature":    "5x5x5x",
			"token_mint":   "SomeMint",
			"token_amount": 1234.5,
			"token_price":  0.0000001707,
		})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Buy(context.Background(), "SomeMint")

	require.True(t, result.OK())
	assert.Equal(t, "5x5x5x", result.Payload.Signature)
	assert.Equal(t, "SomeMint", result.Payload.TokenMint)
	assert.InDelta(t, 1234.5, result.Payload.TokenAmount, 1e-9)
}

func TestBuyHTTPErrorWithStructuredBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "x", "message": "y"})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Buy(context.Background(), "SomeMint")

	require.False(t, result.OK())
	assert.Equal(t, FailHTTP, result.Failure.Kind)
	assert.Equal(t, 500, result.Failure.HTTPStatus)
	assert.Equal(t, "y", result.Failure.Message)
}

func TestBuyHTTPErrorUnparsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Buy(context.Background(), "SomeMint")

	require.False(t, result.OK())
	assert.Equal(t, FailHTTP, result.Failure.Kind)
	assert.Equal(t, 502, result.Failure.HTTPStatus)
	assert.Equal(t, "HTTP 502", result.Failure.Message)
}

func TestBuyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 100*time.Millisecond, 100*time.Millisecond)
	result := c.Buy(context.Background(), "SomeMint")

	require.False(t, result.OK())
	assert.Equal(t, FailTimeout, result.Failure.Kind)
}

func TestBuyNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	result := newTestClient(srv.URL).Buy(context.Background(), "SomeMint")

	require.False(t, result.OK())
	assert.Equal(t, FailNetwork, result.Failure.Kind)
}

func TestMissingAPIKeyShortCircuits(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 2*time.Second, 200*time.Millisecond)

	for _, result := range []*Failure{
		c.Buy(context.Background(), "SomeMint").Failure,
		c.Sell(context.Background(), "SomeMint").Failure,
		c.Positions(context.Background()).Failure,
		c.WalletBalance(context.Background()).Failure,
	} {
		require.NotNil(t, result)
		assert.Equal(t, FailUnauthenticated, result.Kind)
	}
	assert.Equal(t, int32(0), hits.Load(), "no request should leave the process")
}

func TestPositions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/positions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"positions": []map[string]any{
				{"token_mint": "MintA", "current_pnl": 0.5, "current_pnl_percent": 12.5, "hold_duration": "20m57s"},
				{"token_mint": "MintB", "current_pnl": -0.1, "current_pnl_percent": -3.0, "hold_duration": "1h2m"},
			},
			"count": 2,
		})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Positions(context.Background())

	require.True(t, result.OK())
	require.Len(t, result.Payload.Positions, 2)
	assert.Equal(t, 2, result.Payload.Count)
	assert.Equal(t, "MintA", result.Payload.Positions[0].TokenMint)
	assert.InDelta(t, -3.0, result.Payload.Positions[1].CurrentPnLPercent, 1e-9)
}

func TestPositionsCountDefaultsToLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"positions": []map[string]any{{"token_mint": "MintA"}},
		})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Positions(context.Background())

	require.True(t, result.OK())
	assert.Equal(t, 1, result.Payload.Count)
}

func TestWalletBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/wallet/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"uiAmount": 12.34, "symbol": "SOL"})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).WalletBalance(context.Background())

	require.True(t, result.OK())
	assert.InDelta(t, 12.34, result.Payload.UIAmount, 1e-9)
	assert.Equal(t, "SOL", result.Payload.Symbol)
}

func TestHealthDoesNotRequireAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 2*time.Second, 200*time.Millisecond)
	result := c.Health(context.Background())

	require.True(t, result.OK())
	assert.True(t, result.Payload.Healthy())
}

func TestFailureString(t *testing.T) {
	f := &Failure{Kind: FailHTTP, HTTPStatus: 500, Message: "boom"}
	assert.Equal(t, "http_error (HTTP 500): boom", f.String())

	f = &Failure{Kind: FailTimeout, Message: "request timed out"}
	assert.Equal(t, "timeout: request timed out", f.String())
}
