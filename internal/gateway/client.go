// Package gateway translates the bot's trading operations into HTTP calls
// against the upstream trading service and folds every possible outcome
// into a Result value. One attempt per invocation; callers re-issue if they
// want a retry.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solman/solbot/pkg/logger"
)

const headerAPIKey = "X-API-Key"

// Client is the trading gateway. It is stateless apart from the shared
// resty transport and safe for concurrent use.
type Client struct {
	rc            *resty.Client
	apiKey        string
	healthTimeout time.Duration
}

// NewClient builds a gateway against baseURL. timeout bounds trade,
// positions and balance calls; healthTimeout bounds health checks so a
// stalled trading engine cannot stall a status query.
func NewClient(baseURL, apiKey string, timeout, healthTimeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetHeader(headerAPIKey, apiKey)
	}

	return &Client{
		rc:            rc,
		apiKey:        apiKey,
		healthTimeout: healthTimeout,
	}
}

// Health checks the trading engine. A 200 with status != "ok" is a
// successful call carrying an unhealthy report, not a Failure.
func (c *Client) Health(ctx context.Context) Result[HealthReport] {
	hctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	started := time.Now()
	var report HealthReport
	resp, err := c.rc.R().
		SetContext(hctx).
		SetResult(&report).
		Get("/api/v1/health")
	latency := time.Since(started)

	if err != nil {
		f := classifyTransport(err)
		c.logCall("health", f, 0, latency)
		return failure[HealthReport](f)
	}
	if resp.StatusCode() != 200 {
		f := httpFailure(resp)
		c.logCall("health", f, resp.StatusCode(), latency)
		return failure[HealthReport](f)
	}

	report.Latency = latency
	c.logCall("health", nil, resp.StatusCode(), latency)
	return success(report)
}

// Buy asks the upstream service to purchase tokenMint.
func (c *Client) Buy(ctx context.Context, tokenMint string) Result[TradeReceipt] {
	return c.trade(ctx, "buy", "/api/v1/buy", tokenMint)
}

// Sell asks the upstream service to liquidate the tokenMint position.
func (c *Client) Sell(ctx context.Context, tokenMint string) Result[TradeReceipt] {
	return c.trade(ctx, "sell", "/api/v1/sell", tokenMint)
}

func (c *Client) trade(ctx context.Context, op, path, tokenMint string) Result[TradeReceipt] {
	if f := c.requireAPIKey(op); f != nil {
		return failure[TradeReceipt](f)
	}

	started := time.Now()
	var receipt TradeReceipt
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"token_mint": tokenMint}).
		SetResult(&receipt).
		Post(path)
	latency := time.Since(started)

	if err != nil {
		f := classifyTransport(err)
		c.logCall(op, f, 0, latency)
		return failure[TradeReceipt](f)
	}
	if resp.StatusCode() != 200 {
		f := httpFailure(resp)
		c.logCall(op, f, resp.StatusCode(), latency)
		return failure[TradeReceipt](f)
	}

	if receipt.TokenMint == "" {
		receipt.TokenMint = tokenMint
	}
	c.logCall(op, nil, resp.StatusCode(), latency)
	return success(receipt)
}

// Positions fetches the currently tracked positions.
func (c *Client) Positions(ctx context.Context) Result[PositionList] {
	if f := c.requireAPIKey("positions"); f != nil {
		return failure[PositionList](f)
	}

	started := time.Now()
	var list PositionList
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/api/v1/positions")
	latency := time.Since(started)

	if err != nil {
		f := classifyTransport(err)
		c.logCall("positions", f, 0, latency)
		return failure[PositionList](f)
	}
	if resp.StatusCode() != 200 {
		f := httpFailure(resp)
		c.logCall("positions", f, resp.StatusCode(), latency)
		return failure[PositionList](f)
	}

	if list.Count == 0 {
		list.Count = len(list.Positions)
	}
	c.logCall("positions", nil, resp.StatusCode(), latency)
	return success(list)
}

// WalletBalance fetches the trading wallet's balance.
func (c *Client) WalletBalance(ctx context.Context) Result[WalletBalance] {
	if f := c.requireAPIKey("wallet_balance"); f != nil {
		return failure[WalletBalance](f)
	}

	started := time.Now()
	var balance WalletBalance
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&balance).
		Get("/api/v1/wallet/balance")
	latency := time.Since(started)

	if err != nil {
		f := classifyTransport(err)
		c.logCall("wallet_balance", f, 0, latency)
		return failure[WalletBalance](f)
	}
	if resp.StatusCode() != 200 {
		f := httpFailure(resp)
		c.logCall("wallet_balance", f, resp.StatusCode(), latency)
		return failure[WalletBalance](f)
	}

	c.logCall("wallet_balance", nil, resp.StatusCode(), latency)
	return success(balance)
}

// requireAPIKey short-circuits calls when no key is configured locally; no
// request leaves the process.
func (c *Client) requireAPIKey(op string) *Failure {
	if c.apiKey != "" {
		return nil
	}
	f := &Failure{
		Kind:    FailUnauthenticated,
		Message: "API key not configured",
	}
	c.logCall(op, f, 0, 0)
	return f
}

// classifyTransport maps a transport-level error onto the failure taxonomy.
func classifyTransport(err error) *Failure {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailTimeout, Message: "request timed out"}
	case errors.As(err, &nerr) && nerr.Timeout():
		return &Failure{Kind: FailTimeout, Message: "request timed out"}
	case errors.As(err, new(*net.OpError)), errors.Is(err, context.Canceled):
		return &Failure{Kind: FailNetwork, Message: err.Error()}
	default:
		// resty wraps DNS, TLS and connection faults in *url.Error, which
		// errors.As(net.Error) catches above only for timeouts.
		if strings.Contains(err.Error(), "connect") ||
			strings.Contains(err.Error(), "lookup") ||
			strings.Contains(err.Error(), "refused") ||
			strings.Contains(err.Error(), "reset") ||
			strings.Contains(err.Error(), "EOF") ||
			strings.Contains(err.Error(), "tls") {
			return &Failure{Kind: FailNetwork, Message: err.Error()}
		}
		return &Failure{Kind: FailUnknown, Message: err.Error()}
	}
}

// httpFailure builds a Failure from a non-200 response, preferring the
// upstream's structured {error, message} body when it parses.
func httpFailure(resp *resty.Response) *Failure {
	f := &Failure{
		Kind:       FailHTTP,
		HTTPStatus: resp.StatusCode(),
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode()),
	}
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		f.Message = body.Message
	}
	return f
}

// logCall emits one structured line per call: classification only, never
// the payload.
func (c *Client) logCall(op string, f *Failure, status int, latency time.Duration) {
	fields := logrus.Fields{
		"call_id": uuid.NewString()[:8],
		"op":      op,
		"latency": latency.Round(time.Millisecond).String(),
	}
	if status != 0 {
		fields["status"] = status
	}
	if f == nil {
		logger.WithFields(fields).Debug("gateway call ok")
		return
	}
	fields["kind"] = string(f.Kind)
	logger.WithFields(fields).Warnf("gateway call failed: %s", f.Message)
}
