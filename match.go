package x402gate

import (
	"fmt"
	"math/big"
	"strings"
)

// FindMatchingRequirement returns the first requirement in catalog order that
// the proof satisfies: network and asset must match exactly (no cross-chain
// or cross-asset substitution) and the proof amount must cover the required
// amount. First acceptable wins; the client may have satisfied any option.
//
// Returns ErrNoMatchingRequirement when nothing matches. That outcome is
// distinct from a decode failure and surfaces a different challenge reason.
func FindMatchingRequirement(proof *PaymentPayload, accepts []PaymentRequirements) (*PaymentRequirements, error) {
	paid, ok := new(big.Int).SetString(proof.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: unparseable amount %q", ErrNoMatchingRequirement, proof.Amount)
	}

	for i := range accepts {
		req := &accepts[i]
		if proof.Scheme != req.Scheme || proof.Network != req.Network {
			continue
		}
		if !equalAsset(req.Network, proof.Asset, req.Asset) {
			continue
		}
		required, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok {
			continue
		}
		if paid.Cmp(required) >= 0 {
			return req, nil
		}
	}

	return nil, ErrNoMatchingRequirement
}

// equalAsset compares token addresses. EVM hex addresses are compared
// case-insensitively since checksummed and lowercase forms name the same
// contract; Solana base58 addresses are case-sensitive.
func equalAsset(network, a, b string) bool {
	if IsEVMNetwork(network) {
		return strings.EqualFold(a, b)
	}
	return a == b
}
