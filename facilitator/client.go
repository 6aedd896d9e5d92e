package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xymanchick/x402gate"
)

// Client is an HTTP client for a facilitator service exposing POST /verify
// and POST /settle. It holds no mutable state; independent requests may call
// it concurrently.
type Client struct {
	// BaseURL is the facilitator service URL (e.g. "https://facilitator.x402.org").
	BaseURL string

	// HTTPClient is the HTTP client for requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Timeouts bounds the verify and settle round-trips. Applied only when
	// the caller's context carries no deadline of its own.
	Timeouts TimeoutConfig

	// Authorization is a static Authorization header value for the
	// facilitator (e.g. "Bearer token"). Empty means no header.
	Authorization string
}

var _ Facilitator = (*Client)(nil)

// NewClient creates a Client for the given facilitator URL with default
// timeouts.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Timeouts: DefaultTimeouts,
	}
}

// verifyRequest is the wire form of both facilitator calls.
type verifyRequest struct {
	X402Version         int                          `json:"x402Version"`
	PaymentPayload      *x402gate.PaymentPayload     `json:"paymentPayload"`
	PaymentRequirements x402gate.PaymentRequirements `json:"paymentRequirements"`
}

// Verify delegates authenticity and sufficiency checking to the facilitator.
// Transport failures and timeouts are returned as errors wrapping
// ErrFacilitatorUnavailable; the gate treats them exactly like a rejection.
func (c *Client) Verify(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.VerifyResponse, error) {
	var verifyResp x402gate.VerifyResponse
	if err := c.post(ctx, "/verify", c.Timeouts.VerifyTimeout, payment, requirement, &verifyResp); err != nil {
		return nil, err
	}
	return &verifyResp, nil
}

// Settle finalizes a verified payment. Called at most once per request, only
// after the wrapped handler has produced its response; it is never retried
// within the same request lifecycle.
func (c *Client) Settle(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.SettleResponse, error) {
	var settleResp x402gate.SettleResponse
	if err := c.post(ctx, "/settle", c.Timeouts.SettleTimeout, payment, requirement, &settleResp); err != nil {
		return nil, err
	}
	return &settleResp, nil
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements, out interface{}) error {
	data, err := json.Marshal(verifyRequest{
		X402Version:         x402gate.ProtocolVersion,
		PaymentPayload:      payment,
		PaymentRequirements: requirement,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.Authorization != "" {
		httpReq.Header.Set("Authorization", c.Authorization)
	}

	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", x402gate.ErrFacilitatorUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return parseErrorResponse(httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode facilitator response: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// parseErrorResponse extracts error details from a non-200 HTTP response.
func parseErrorResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	var errBody map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &errBody); err == nil {
		for _, key := range []string{"invalidReason", "errorReason", "error"} {
			if reason, ok := errBody[key].(string); ok && reason != "" {
				return fmt.Errorf("%w: status %d, reason: %s", x402gate.ErrFacilitatorUnavailable, resp.StatusCode, reason)
			}
		}
	}

	return fmt.Errorf("%w: status %d", x402gate.ErrFacilitatorUnavailable, resp.StatusCode)
}
