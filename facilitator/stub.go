package facilitator

import (
	"context"
	"sync/atomic"

	"github.com/xymanchick/x402gate"
)

// Stub is a deterministic in-memory Facilitator for tests and local
// development. The zero value verifies and settles every payment; set the
// response or error fields to exercise failure paths. Call counters are
// atomic so concurrent requests can be asserted on.
type Stub struct {
	// VerifyResponse is returned by Verify when VerifyErr is nil. When
	// left nil, Verify answers with IsValid true.
	VerifyResponse *x402gate.VerifyResponse

	// VerifyErr, when set, is returned by Verify.
	VerifyErr error

	// SettleResponse is returned by Settle when SettleErr is nil. When
	// left nil, Settle answers with Success true and a fixed transaction.
	SettleResponse *x402gate.SettleResponse

	// SettleErr, when set, is returned by Settle.
	SettleErr error

	verifyCalls atomic.Int64
	settleCalls atomic.Int64
}

var _ Facilitator = (*Stub)(nil)

// Verify implements Facilitator.
func (s *Stub) Verify(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.VerifyResponse, error) {
	s.verifyCalls.Add(1)
	if s.VerifyErr != nil {
		return nil, s.VerifyErr
	}
	if s.VerifyResponse != nil {
		resp := *s.VerifyResponse
		return &resp, nil
	}
	return &x402gate.VerifyResponse{IsValid: true}, nil
}

// Settle implements Facilitator.
func (s *Stub) Settle(ctx context.Context, payment *x402gate.PaymentPayload, requirement x402gate.PaymentRequirements) (*x402gate.SettleResponse, error) {
	s.settleCalls.Add(1)
	if s.SettleErr != nil {
		return nil, s.SettleErr
	}
	if s.SettleResponse != nil {
		resp := *s.SettleResponse
		return &resp, nil
	}
	return &x402gate.SettleResponse{
		Success:     true,
		Transaction: "0xstubsettlement",
		Network:     requirement.Network,
	}, nil
}

// VerifyCalls returns how many times Verify has been invoked.
func (s *Stub) VerifyCalls() int64 { return s.verifyCalls.Load() }

// SettleCalls returns how many times Settle has been invoked.
func (s *Stub) SettleCalls() int64 { return s.settleCalls.Load() }
