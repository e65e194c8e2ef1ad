package gateway

import (
	"fmt"
	"time"
)

// FailureKind classifies everything that can go wrong with an upstream call.
type FailureKind string

const (
	FailNetwork         FailureKind = "network_error"
	FailTimeout         FailureKind = "timeout"
	FailUnauthenticated FailureKind = "unauthenticated"
	FailHTTP            FailureKind = "http_error"
	FailUnknown         FailureKind = "unknown"
)

// Failure describes a failed call as plain data. The gateway never returns
// Go errors to callers; the chat layer turns Failures into user-facing text.
type Failure struct {
	Kind       FailureKind
	Message    string
	HTTPStatus int // set only for Kind == FailHTTP
}

func (f *Failure) String() string {
	if f == nil {
		return "<nil>"
	}
	if f.HTTPStatus != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", f.Kind, f.HTTPStatus, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Result carries either a payload or a Failure. Exactly one is meaningful:
// Failure is nil on success.
type Result[T any] struct {
	Payload T
	Failure *Failure
}

// OK reports whether the call succeeded at the transport and HTTP level.
func (r Result[T]) OK() bool {
	return r.Failure == nil
}

func success[T any](payload T) Result[T] {
	return Result[T]{Payload: payload}
}

func failure[T any](f *Failure) Result[T] {
	return Result[T]{Failure: f}
}

// HealthReport is the decoded /health payload. A degraded upstream is still
// a successful call: Healthy distinguishes business state from transport
// failure.
type HealthReport struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	TrackerRunning   bool   `json:"tracker_running"`
	TrackedPositions int    `json:"tracked_positions"`

	Latency time.Duration `json:"-"`
}

// Healthy reports whether the trading engine declared itself ok.
func (h HealthReport) Healthy() bool {
	return h.Status == "ok"
}

// TradeReceipt is the canonical buy/sell success payload.
type TradeReceipt struct {
	Signature   string  `json:"signature"`
	TokenMint   string  `json:"token_mint"`
	TokenAmount float64 `json:"token_amount"`
	TokenPrice  float64 `json:"token_price"`
	Slippage    float64 `json:"slippage,omitempty"`
}

// Position is one tracked holding as reported by the upstream tracker.
type Position struct {
	TokenMint         string  `json:"token_mint"`
	Signature         string  `json:"signature"`
	CurrentPnL        float64 `json:"current_pnl"`
	CurrentPnLPercent float64 `json:"current_pnl_percent"`
	HighestPnLPercent float64 `json:"highest_pnl_percent"`
	HoldDuration      string  `json:"hold_duration"`
}

// PositionList is the /positions payload.
type PositionList struct {
	Positions []Position `json:"positions"`
	Count     int        `json:"count"`
}

// WalletBalance is the /wallet/balance payload.
type WalletBalance struct {
	UIAmount float64 `json:"uiAmount"`
	Symbol   string  `json:"symbol"`
	Address  string  `json:"address"`
}

// errorBody is the structured error shape the upstream returns on non-200.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
