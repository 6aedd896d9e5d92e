package x402gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseAccepts() []PaymentRequirements {
	return []PaymentRequirements{
		{
			Scheme:  SchemeExact,
			Network: NetworkBase,
			Asset:   "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
			Amount:  "100000",
			PayTo:   "0x209693bc6afc0c5328ba36faf03c514ef312287c",
		},
		{
			Scheme:  SchemeExact,
			Network: NetworkSolanaMainnet,
			Asset:   "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			Amount:  "150000",
			PayTo:   "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		},
	}
}

func proofFor(network, asset, amount string) *PaymentPayload {
	return &PaymentPayload{
		X402Version: ProtocolVersion,
		Scheme:      SchemeExact,
		Network:     network,
		Asset:       asset,
		Amount:      amount,
	}
}

func TestFindMatchingRequirement_FirstAcceptableWins(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "100000")

	match, err := FindMatchingRequirement(proof, accepts)
	require.NoError(t, err)
	assert.Equal(t, NetworkBase, match.Network)
}

func TestFindMatchingRequirement_AnyOptionSatisfies(t *testing.T) {
	// The client may pay with option i of N; option order never forces the
	// cheapest or the first.
	accepts := baseAccepts()
	proof := proofFor(NetworkSolanaMainnet, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "150000")

	match, err := FindMatchingRequirement(proof, accepts)
	require.NoError(t, err)
	assert.Equal(t, NetworkSolanaMainnet, match.Network)
}

func TestFindMatchingRequirement_OverpaymentAccepted(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "150000")

	match, err := FindMatchingRequirement(proof, accepts)
	require.NoError(t, err)
	assert.Equal(t, "100000", match.Amount)
}

func TestFindMatchingRequirement_Underpayment(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "99999")

	_, err := FindMatchingRequirement(proof, accepts)
	assert.ErrorIs(t, err, ErrNoMatchingRequirement)
}

func TestFindMatchingRequirement_WrongNetwork(t *testing.T) {
	// No implicit cross-chain substitution.
	accepts := baseAccepts()
	proof := proofFor(NetworkEthereum, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "100000")

	_, err := FindMatchingRequirement(proof, accepts)
	assert.ErrorIs(t, err, ErrNoMatchingRequirement)
}

func TestFindMatchingRequirement_WrongAsset(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x0000000000000000000000000000000000000001", "100000")

	_, err := FindMatchingRequirement(proof, accepts)
	assert.ErrorIs(t, err, ErrNoMatchingRequirement)
}

func TestFindMatchingRequirement_EVMAssetCaseInsensitive(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "100000")

	match, err := FindMatchingRequirement(proof, accepts)
	require.NoError(t, err)
	assert.Equal(t, NetworkBase, match.Network)
}

func TestFindMatchingRequirement_SVMAssetCaseSensitive(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkSolanaMainnet, "epjfwdd5aufqssqem2qn1xzybapc8g4weggkzwytdt1v", "150000")

	_, err := FindMatchingRequirement(proof, accepts)
	assert.ErrorIs(t, err, ErrNoMatchingRequirement)
}

func TestFindMatchingRequirement_UnparseableAmount(t *testing.T) {
	accepts := baseAccepts()
	proof := proofFor(NetworkBase, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "lots")

	_, err := FindMatchingRequirement(proof, accepts)
	assert.ErrorIs(t, err, ErrNoMatchingRequirement)
}
