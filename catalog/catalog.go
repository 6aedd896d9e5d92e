// Package catalog implements the process-wide pricing table mapping an
// operation id to its acceptable payment options.
//
// The catalog is loaded once at process start from a declarative JSON source
// and is read-only afterwards, which makes unsynchronized concurrent reads
// safe. Loading fails fast on a malformed source or an operation with an
// empty option list; the process must not serve traffic with a bad catalog.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/xeipuuv/gojsonschema"

	x402gate "github.com/xymanchick/x402gate"
)

// Option is one accepted way to pay for one operation. Immutable once loaded.
type Option struct {
	// ChainID is the EVM chain id the option was declared with, when the
	// source used chain_id rather than an explicit network.
	ChainID int64 `json:"chain_id,omitempty"`

	// Network is the CAIP-2 network identifier. Derived from ChainID for
	// EVM options, declared explicitly for Solana options.
	Network string `json:"network,omitempty"`

	// TokenAddress is the token contract (EVM) or mint (Solana) address.
	TokenAddress string `json:"token_address"`

	// TokenAmount is the required payment in atomic units.
	TokenAmount int64 `json:"token_amount"`

	// PayeeAddress is the recipient of the payment.
	PayeeAddress string `json:"payee_address"`

	// Description optionally explains the charge for this option.
	Description string `json:"description,omitempty"`
}

// Requirement expands the option into its wire-level form for the given
// resource. Expansion is pure: same option and arguments produce an
// identical requirement.
func (o Option) Requirement(resource, description string) x402gate.PaymentRequirements {
	if o.Description != "" {
		description = o.Description
	}
	return x402gate.PaymentRequirements{
		Scheme:            x402gate.SchemeExact,
		Network:           o.Network,
		Asset:             o.TokenAddress,
		Amount:            strconv.FormatInt(o.TokenAmount, 10),
		PayTo:             o.PayeeAddress,
		Resource:          resource,
		Description:       description,
		MaxTimeoutSeconds: DefaultMaxTimeoutSeconds,
	}
}

// DefaultMaxTimeoutSeconds is the validity window advertised for every
// payment requirement.
const DefaultMaxTimeoutSeconds = 300

// Catalog is the immutable pricing table. Safe for concurrent use; there is
// no mutation API after load.
type Catalog struct {
	ops map[string][]Option
}

// Load reads and parses the pricing source at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from raw JSON, validating the document against the
// catalog schema and every option against its network's address rules.
func Parse(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var raw map[string][]Option
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, x402gate.NewPaymentError(x402gate.ErrCodeInvalidConfig, "decoding pricing catalog", err)
	}

	ops := make(map[string][]Option, len(raw))
	for operation, options := range raw {
		normalized := make([]Option, len(options))
		for i, opt := range options {
			n, err := normalizeOption(opt)
			if err != nil {
				return nil, x402gate.NewPaymentError(x402gate.ErrCodeInvalidConfig,
					fmt.Sprintf("operation %q option %d", operation, i), err)
			}
			normalized[i] = n
		}
		ops[operation] = normalized
	}

	return &Catalog{ops: ops}, nil
}

// Get returns the ordered option list for an operation. The second return
// is false for unpriced (free) operations.
func (c *Catalog) Get(operation string) ([]Option, bool) {
	options, ok := c.ops[operation]
	return options, ok
}

// Priced reports whether the operation requires payment.
func (c *Catalog) Priced(operation string) bool {
	_, ok := c.ops[operation]
	return ok
}

// Len returns the number of priced operations.
func (c *Catalog) Len() int {
	return len(c.ops)
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(catalogSchema))
})

func validateSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling catalog schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return x402gate.NewPaymentError(x402gate.ErrCodeInvalidConfig, "pricing catalog is not valid JSON", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return x402gate.NewPaymentError(x402gate.ErrCodeInvalidConfig,
			"pricing catalog failed schema validation: "+strings.Join(details, "; "), nil)
	}
	return nil
}

// normalizeOption resolves the option's network and validates its addresses
// against that network's format.
func normalizeOption(opt Option) (Option, error) {
	switch {
	case opt.ChainID > 0 && opt.Network != "":
		return opt, fmt.Errorf("chain_id and network are mutually exclusive")
	case opt.ChainID > 0:
		opt.Network = x402gate.NetworkForChainID(opt.ChainID)
	case opt.Network == "":
		return opt, fmt.Errorf("either chain_id or network is required")
	}

	switch {
	case x402gate.IsEVMNetwork(opt.Network):
		if !common.IsHexAddress(opt.TokenAddress) {
			return opt, fmt.Errorf("invalid EVM token address %q", opt.TokenAddress)
		}
		if !common.IsHexAddress(opt.PayeeAddress) {
			return opt, fmt.Errorf("invalid EVM payee address %q", opt.PayeeAddress)
		}
		opt.TokenAddress = strings.ToLower(opt.TokenAddress)
		opt.PayeeAddress = strings.ToLower(opt.PayeeAddress)
	case x402gate.IsSVMNetwork(opt.Network):
		if _, err := solana.PublicKeyFromBase58(opt.TokenAddress); err != nil {
			return opt, fmt.Errorf("invalid Solana mint address %q: %w", opt.TokenAddress, err)
		}
		if _, err := solana.PublicKeyFromBase58(opt.PayeeAddress); err != nil {
			return opt, fmt.Errorf("invalid Solana payee address %q: %w", opt.PayeeAddress, err)
		}
	default:
		return opt, fmt.Errorf("unsupported network %q", opt.Network)
	}

	return opt, nil
}
