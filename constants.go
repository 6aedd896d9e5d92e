package x402gate

// Version constants
const (
	// Version is the library version
	Version = "1.0.0"

	// ProtocolVersion is the x402 protocol version spoken by the gate
	ProtocolVersion = 1
)

// HTTP header names carrying payment material.
const (
	// HeaderPayment carries the client's encoded payment proof.
	HeaderPayment = "X-PAYMENT"

	// HeaderPaymentResponse carries the encoded settlement receipt on success.
	HeaderPaymentResponse = "X-PAYMENT-RESPONSE"
)

// SchemeExact is the only payment scheme the gate accepts.
const SchemeExact = "exact"

// Machine-distinguishable challenge reasons surfaced in the 402 body's
// "error" field. Clients dispatch on these strings, so they are stable.
const (
	ReasonMissingHeader   = "missing payment header"
	ReasonMalformedHeader = "invalid payment header format"
	ReasonNoMatch         = "no matching payment requirements found"
	ReasonVerifyFailed    = "verification failed"
)
