package gate

import (
	"github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/catalog"
)

// ChallengeBuilder constructs 402 "payment required" bodies for priced
// operations. Building is pure and deterministic: the same operation against
// the same catalog yields a byte-identical accepts list, order preserved
// from the catalog, regardless of why the request was challenged.
type ChallengeBuilder struct {
	catalog *catalog.Catalog
}

// NewChallengeBuilder creates a builder over the given catalog.
func NewChallengeBuilder(c *catalog.Catalog) *ChallengeBuilder {
	return &ChallengeBuilder{catalog: c}
}

// Build expands every payment option for the operation into its wire-level
// requirement. An empty reason produces a plain payment-required body with a
// null error; otherwise the reason goes into the error field untouched.
func (b *ChallengeBuilder) Build(operation, resource, reason string) x402gate.PaymentRequired {
	options, _ := b.catalog.Get(operation)

	accepts := make([]x402gate.PaymentRequirements, len(options))
	for i, opt := range options {
		accepts[i] = opt.Requirement(resource, "Payment required for "+operation)
	}

	body := x402gate.PaymentRequired{
		X402Version: x402gate.ProtocolVersion,
		Accepts:     accepts,
	}
	if reason != "" {
		body.Error = &reason
	}
	return body
}

// Requirements returns the expanded accepts list alone, for surfaces that
// advertise pricing outside a challenge.
func (b *ChallengeBuilder) Requirements(operation, resource string) []x402gate.PaymentRequirements {
	return b.Build(operation, resource, "").Accepts
}
