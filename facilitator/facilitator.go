// Package facilitator provides clients for the external authority that
// verifies and settles payment proofs on behalf of the gate.
//
// Two implementations exist: Client speaks HTTP to a real facilitator
// service, and Stub answers deterministically in-memory for tests. Both are
// stateless per call and safe for concurrent use; which one a process uses
// is a dependency-injection decision, never a global.
package facilitator

import (
	"context"
	"fmt"
	"time"

	"github.com/xymanchick/x402gate"
)

// Facilitator verifies and settles payment proofs against requirements.
type Facilitator interface {
	// Verify checks authenticity and sufficiency of a proof without
	// executing the payment.
	Verify(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.VerifyResponse, error)

	// Settle finalizes a previously verified payment on-chain.
	Settle(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.SettleResponse, error)
}

// TimeoutConfig bounds the two facilitator round-trips. A timeout follows
// the same failure path as an explicit rejection: fail closed, never open.
type TimeoutConfig struct {
	// VerifyTimeout is the maximum time to wait for payment verification.
	VerifyTimeout time.Duration

	// SettleTimeout is the maximum time to wait for payment settlement.
	// Settlement is slower than verification since it lands on-chain.
	SettleTimeout time.Duration
}

// DefaultTimeouts provides sensible defaults for payment operations.
var DefaultTimeouts = TimeoutConfig{
	VerifyTimeout: 5 * time.Second,
	SettleTimeout: 60 * time.Second,
}

// Validate ensures timeout values are reasonable.
func (tc TimeoutConfig) Validate() error {
	if tc.VerifyTimeout <= 0 {
		return fmt.Errorf("verify timeout must be positive, got %v", tc.VerifyTimeout)
	}
	if tc.SettleTimeout <= 0 {
		return fmt.Errorf("settle timeout must be positive, got %v", tc.SettleTimeout)
	}
	return nil
}
