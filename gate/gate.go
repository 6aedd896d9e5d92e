// Package gate implements the payment-gating dispatcher shared by every
// invocation surface. A surface adapter (REST middleware, agent-tool
// middleware) resolves the operation id and the raw proof header, asks the
// Dispatcher to admit the request, invokes the wrapped handler only on
// admission, and finally asks the Dispatcher to settle.
//
// Keeping the decision logic here, parameterized by an injected catalog and
// facilitator, is what makes pricing and verification behavior
// indistinguishable across surfaces.
package gate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/catalog"
	"github.com/xymanchick/x402gate/facilitator"
)

// Config wires a Dispatcher.
type Config struct {
	// Catalog is the immutable pricing table. Required.
	Catalog *catalog.Catalog

	// Facilitator verifies and settles proofs. Required.
	Facilitator facilitator.Facilitator

	// VerifyOnly skips settlement when true (testing/staging).
	VerifyOnly bool

	// Logger receives gate decisions. Defaults to slog.Default().
	Logger *slog.Logger
}

// Dispatcher orchestrates the gate state machine. It holds no per-request
// state; concurrent requests share it freely.
type Dispatcher struct {
	catalog     *catalog.Catalog
	facilitator facilitator.Facilitator
	challenges  *ChallengeBuilder
	verifyOnly  bool
	logger      *slog.Logger
}

// New validates the configuration and builds a Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("gate: pricing catalog is required")
	}
	if cfg.Facilitator == nil {
		return nil, fmt.Errorf("gate: facilitator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		catalog:     cfg.Catalog,
		facilitator: cfg.Facilitator,
		challenges:  NewChallengeBuilder(cfg.Catalog),
		verifyOnly:  cfg.VerifyOnly,
		logger:      logger,
	}, nil
}

// Challenges exposes the dispatcher's challenge builder.
func (d *Dispatcher) Challenges() *ChallengeBuilder {
	return d.challenges
}

// Admission is the successful outcome of the pre-handler phase. For priced
// operations it carries everything settlement needs.
type Admission struct {
	// Priced is false for operations absent from the catalog; such requests
	// pass through with zero header inspection.
	Priced bool

	// Operation is the admitted operation id.
	Operation string

	// Proof is the decoded payment proof (nil when unpriced).
	Proof *x402gate.PaymentPayload

	// Requirement is the catalog option the proof matched (nil when unpriced).
	Requirement *x402gate.PaymentRequirements

	// Verification is the facilitator's verify answer (nil when unpriced).
	Verification *x402gate.VerifyResponse
}

// Challenge is a terminal refusal: the surface must respond 402 with Body
// and never invoke the wrapped handler.
type Challenge struct {
	// Reason is the machine-distinguishable error string.
	Reason string

	// Body is the full payment-required response body. Its accepts list is
	// identical across reasons for the same operation.
	Body x402gate.PaymentRequired
}

// Admit runs the gate state machine up to (but not including) handler
// invocation: catalog lookup, proof decoding, requirement matching, and
// facilitator verification. Exactly one of the returns is non-nil.
//
// All failures terminate locally as a Challenge; nothing propagates to the
// transport layer and the wrapped handler is never invoked speculatively.
func (d *Dispatcher) Admit(ctx context.Context, operation, resource, proofHeader string) (*Admission, *Challenge) {
	options, priced := d.catalog.Get(operation)
	if !priced {
		return &Admission{Operation: operation}, nil
	}

	challenge := func(reason string) (*Admission, *Challenge) {
		return nil, &Challenge{
			Reason: reason,
			Body:   d.challenges.Build(operation, resource, reason),
		}
	}

	if proofHeader == "" {
		d.logger.InfoContext(ctx, "no payment header provided", "operation", operation)
		return challenge(x402gate.ReasonMissingHeader)
	}

	proof, err := x402gate.DecodePayment(proofHeader)
	if err != nil {
		d.logger.WarnContext(ctx, "invalid payment header", "operation", operation, "error", err)
		return challenge(x402gate.ReasonMalformedHeader)
	}

	requirement, err := d.match(proof, options, operation, resource)
	if err != nil {
		d.logger.WarnContext(ctx, "no matching payment requirement",
			"operation", operation, "network", proof.Network, "asset", proof.Asset)
		return challenge(x402gate.ReasonNoMatch)
	}

	verification, err := d.facilitator.Verify(ctx, proof, *requirement)
	if err != nil {
		d.logger.ErrorContext(ctx, "facilitator verification failed", "operation", operation, "error", err)
		return challenge(x402gate.ReasonVerifyFailed)
	}
	if !verification.IsValid {
		d.logger.WarnContext(ctx, "payment rejected",
			"operation", operation, "reason", verification.InvalidReason)
		return challenge(x402gate.ReasonVerifyFailed)
	}

	d.logger.InfoContext(ctx, "payment verified", "operation", operation, "payer", verification.Payer)
	return &Admission{
		Priced:       true,
		Operation:    operation,
		Proof:        proof,
		Requirement:  requirement,
		Verification: verification,
	}, nil
}

// match expands the admitted operation's options to requirements and picks
// the first one the proof satisfies.
func (d *Dispatcher) match(proof *x402gate.PaymentPayload, options []catalog.Option, operation, resource string) (*x402gate.PaymentRequirements, error) {
	accepts := make([]x402gate.PaymentRequirements, len(options))
	for i, opt := range options {
		accepts[i] = opt.Requirement(resource, "Payment required for "+operation)
	}
	return x402gate.FindMatchingRequirement(proof, accepts)
}

// Settle finalizes the admitted payment after the wrapped handler has
// produced its response. It runs detached from the request's cancellation:
// a client disconnect must not abort settlement once the handler executed,
// or the paid/unpaid state becomes ambiguous.
//
// Settlement is attempted exactly once and never retried; a failure is
// returned for the surface to log and to omit or flag the receipt header.
// It can never revoke the handler's already-computed response.
func (d *Dispatcher) Settle(ctx context.Context, adm *Admission) (*x402gate.SettleResponse, error) {
	if adm == nil || !adm.Priced {
		return nil, nil
	}
	if d.verifyOnly {
		d.logger.InfoContext(ctx, "verify-only mode, skipping settlement", "operation", adm.Operation)
		return nil, nil
	}

	settleCtx := context.WithoutCancel(ctx)
	receipt, err := d.facilitator.Settle(settleCtx, adm.Proof, *adm.Requirement)
	if err != nil {
		d.logger.ErrorContext(ctx, "settlement failed",
			"operation", adm.Operation, "error", err)
		return nil, fmt.Errorf("%w: %v", x402gate.ErrSettlementFailed, err)
	}
	if !receipt.Success {
		d.logger.ErrorContext(ctx, "settlement unsuccessful",
			"operation", adm.Operation, "reason", receipt.ErrorReason)
		return receipt, fmt.Errorf("%w: %s", x402gate.ErrSettlementFailed, receipt.ErrorReason)
	}

	d.logger.InfoContext(ctx, "payment settled",
		"operation", adm.Operation, "transaction", receipt.Transaction)
	return receipt, nil
}
