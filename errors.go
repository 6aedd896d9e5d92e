package x402gate

import "errors"

// Sentinel errors for x402 gate operations.
var (
	// ErrMalformedHeader indicates the X-PAYMENT header could not be decoded.
	ErrMalformedHeader = errors.New("x402: malformed payment header")

	// ErrUnsupportedVersion indicates an x402 protocol version the gate does
	// not recognize.
	ErrUnsupportedVersion = errors.New("x402: unsupported protocol version")

	// ErrNoMatchingRequirement indicates the decoded proof satisfies none of
	// the operation's configured payment options.
	ErrNoMatchingRequirement = errors.New("x402: no matching payment requirement")

	// ErrFacilitatorUnavailable indicates the facilitator could not be
	// reached or timed out.
	ErrFacilitatorUnavailable = errors.New("x402: facilitator service unavailable")

	// ErrVerificationFailed indicates the facilitator rejected the proof.
	ErrVerificationFailed = errors.New("x402: payment verification failed")

	// ErrSettlementFailed indicates payment settlement failed.
	ErrSettlementFailed = errors.New("x402: payment settlement failed")
)

// ErrorCode represents gate error codes for programmatic handling.
type ErrorCode string

const (
	// ErrCodeMalformedHeader indicates an undecodable payment header.
	ErrCodeMalformedHeader ErrorCode = "MALFORMED_HEADER"

	// ErrCodeUnsupportedVersion indicates an unsupported protocol version.
	ErrCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// ErrCodeNoMatch indicates no configured option matched the proof.
	ErrCodeNoMatch ErrorCode = "NO_MATCHING_REQUIREMENT"

	// ErrCodeVerificationFailed indicates facilitator rejection or outage.
	ErrCodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"

	// ErrCodeSettlementFailed indicates a failed settle call.
	ErrCodeSettlementFailed ErrorCode = "SETTLEMENT_FAILED"

	// ErrCodeInvalidConfig indicates a malformed pricing configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// PaymentError provides structured error information.
type PaymentError struct {
	// Code is the error code for programmatic handling.
	Code ErrorCode

	// Message is the human-readable error message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given code and message.
func NewPaymentError(code ErrorCode, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
