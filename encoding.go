package x402gate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncodePayment converts a PaymentPayload to the base64-encoded JSON form
// carried in the X-PAYMENT header.
func EncodePayment(payment PaymentPayload) (string, error) {
	paymentJSON, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(paymentJSON), nil
}

// DecodePayment decodes an X-PAYMENT header value into a PaymentPayload.
// Decoding is purely local: it never performs network I/O and never checks
// cryptographic authenticity.
//
// Returns ErrMalformedHeader (possibly wrapped) for non-decodable payloads
// and payloads missing required fields, and ErrUnsupportedVersion for
// protocol versions the gate does not recognize.
func DecodePayment(encoded string) (*PaymentPayload, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrMalformedHeader)
	}

	var payment PaymentPayload
	if err := json.Unmarshal(decoded, &payment); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedHeader)
	}

	if payment.X402Version != ProtocolVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, payment.X402Version)
	}
	if payment.Scheme == "" || payment.Network == "" || payment.Asset == "" || payment.Amount == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrMalformedHeader)
	}

	return &payment, nil
}

// EncodeSettlement converts a SettleResponse to the base64-encoded JSON form
// carried in the X-PAYMENT-RESPONSE header.
func EncodeSettlement(settlement SettleResponse) (string, error) {
	settlementJSON, err := json.Marshal(settlement)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement: %w", err)
	}
	return base64.StdEncoding.EncodeToString(settlementJSON), nil
}

// DecodeSettlement converts an X-PAYMENT-RESPONSE header value back to a
// SettleResponse. Used by clients and tests.
func DecodeSettlement(encoded string) (*SettleResponse, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	var settlement SettleResponse
	if err := json.Unmarshal(decoded, &settlement); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement: %w", err)
	}

	return &settlement, nil
}
