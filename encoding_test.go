package x402gate

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProof() PaymentPayload {
	return PaymentPayload{
		X402Version: ProtocolVersion,
		Scheme:      SchemeExact,
		Network:     NetworkBase,
		Asset:       "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
		Amount:      "100000",
		Payload: map[string]interface{}{
			"signature": "0xdeadbeef",
		},
	}
}

func TestDecodePayment_RoundTrip(t *testing.T) {
	encoded, err := EncodePayment(validProof())
	require.NoError(t, err)

	decoded, err := DecodePayment(encoded)
	require.NoError(t, err)
	assert.Equal(t, ProtocolVersion, decoded.X402Version)
	assert.Equal(t, NetworkBase, decoded.Network)
	assert.Equal(t, "100000", decoded.Amount)
	assert.Equal(t, "0xdeadbeef", decoded.Payload["signature"])
}

func TestDecodePayment_InvalidBase64(t *testing.T) {
	_, err := DecodePayment("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodePayment_InvalidJSON(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("{truncated"))
	_, err := DecodePayment(encoded)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodePayment_MissingFields(t *testing.T) {
	proof := validProof()
	proof.Asset = ""
	encoded, err := EncodePayment(proof)
	require.NoError(t, err)

	_, err = DecodePayment(encoded)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodePayment_UnsupportedVersion(t *testing.T) {
	proof := validProof()
	proof.X402Version = 99
	encoded, err := EncodePayment(proof)
	require.NoError(t, err)

	_, err = DecodePayment(encoded)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestSettlementRoundTrip(t *testing.T) {
	receipt := SettleResponse{
		Success:     true,
		Transaction: "0xabc123",
		Network:     NetworkBase,
	}

	encoded, err := EncodeSettlement(receipt)
	require.NoError(t, err)

	decoded, err := DecodeSettlement(encoded)
	require.NoError(t, err)
	assert.Equal(t, receipt, *decoded)
}

func TestDecodeSettlement_Invalid(t *testing.T) {
	_, err := DecodeSettlement("%%%")
	assert.Error(t, err)
}
