package x402gate

// PaymentRequirements is one acceptable way to pay for an operation, as
// advertised in the "accepts" array of a 402 response.
type PaymentRequirements struct {
	// Scheme is the payment scheme identifier (always "exact").
	Scheme string `json:"scheme"`

	// Network is the blockchain network in CAIP-2 format (e.g. "eip155:8453").
	Network string `json:"network"`

	// Asset is the token contract address (EVM) or mint address (Solana).
	Asset string `json:"asset"`

	// Amount is the required payment in atomic units, as a decimal string.
	Amount string `json:"amount"`

	// PayTo is the recipient address for the payment.
	PayTo string `json:"payTo"`

	// Resource identifies the priced operation being bought.
	Resource string `json:"resource"`

	// Description is a human-readable explanation of the charge.
	Description string `json:"description,omitempty"`

	// MaxTimeoutSeconds is the validity window for the payment authorization.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds,omitempty"`
}

// PaymentRequired is the 402 response body.
type PaymentRequired struct {
	// X402Version is the protocol version (1).
	X402Version int `json:"x402Version"`

	// Accepts lists the payment options the server will accept, in catalog
	// order. The list is identical regardless of why the request was
	// challenged.
	Accepts []PaymentRequirements `json:"accepts"`

	// Error distinguishes why the request was challenged. Nil (JSON null) on
	// a plain payment-required response.
	Error *string `json:"error"`
}

// PaymentPayload is the decoded client-submitted payment proof carried in
// the X-PAYMENT header. It exists only for the duration of one request.
type PaymentPayload struct {
	// X402Version is the protocol version the client speaks.
	X402Version int `json:"x402Version"`

	// Scheme is the payment scheme identifier.
	Scheme string `json:"scheme"`

	// Network is the blockchain network in CAIP-2 format.
	Network string `json:"network"`

	// Asset is the token contract or mint address being paid with.
	Asset string `json:"asset"`

	// Amount is the paid amount in atomic units, as a decimal string.
	Amount string `json:"amount"`

	// Payload is the scheme-specific signed payment data. The gate never
	// interprets it; authenticity checking is the facilitator's job.
	Payload map[string]interface{} `json:"payload"`
}

// VerifyResponse is the facilitator's answer to a verify call.
type VerifyResponse struct {
	// IsValid indicates whether the payment proof is valid.
	IsValid bool `json:"isValid"`

	// InvalidReason is a short error code when the proof is invalid.
	InvalidReason string `json:"invalidReason,omitempty"`

	// Payer is the address that made the payment, when known.
	Payer string `json:"payer,omitempty"`
}

// SettleResponse is the facilitator's answer to a settle call. It is
// attached (encoded) to the outgoing response as X-PAYMENT-RESPONSE.
type SettleResponse struct {
	// Success indicates whether the payment was settled.
	Success bool `json:"success"`

	// Transaction is the on-chain transaction reference, when settled.
	Transaction string `json:"transaction,omitempty"`

	// Network is the network the payment settled on (CAIP-2 format).
	Network string `json:"network,omitempty"`

	// ErrorReason is a short error code when settlement failed.
	ErrorReason string `json:"errorReason,omitempty"`
}
