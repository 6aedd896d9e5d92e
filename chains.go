package x402gate

import (
	"fmt"
	"strconv"
	"strings"
)

// CAIP-2 identifiers for networks the pricing catalog ships constants for.
// Any eip155 chain id is accepted; these just name the common ones.
const (
	// EVM mainnets
	NetworkEthereum  = "eip155:1"
	NetworkPolygon   = "eip155:137"
	NetworkBase      = "eip155:8453"
	NetworkAvalanche = "eip155:43114"

	// EVM testnets
	NetworkSepolia     = "eip155:11155111"
	NetworkBaseSepolia = "eip155:84532"

	// Solana networks (genesis hash reference per CAIP-2)
	NetworkSolanaMainnet = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	NetworkSolanaDevnet  = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

// NetworkForChainID derives the CAIP-2 network identifier from a numeric
// EVM chain id, e.g. 8453 -> "eip155:8453".
func NetworkForChainID(chainID int64) string {
	return "eip155:" + strconv.FormatInt(chainID, 10)
}

// ChainIDFromNetwork parses the chain id out of an eip155 CAIP-2 identifier.
// Returns an error for Solana and other non-EVM networks.
func ChainIDFromNetwork(network string) (int64, error) {
	raw, ok := strings.CutPrefix(network, "eip155:")
	if !ok {
		return 0, fmt.Errorf("not an eip155 network: %s", network)
	}
	chainID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chainID <= 0 {
		return 0, fmt.Errorf("invalid eip155 chain id: %s", network)
	}
	return chainID, nil
}

// IsEVMNetwork reports whether the network is an eip155 chain.
func IsEVMNetwork(network string) bool {
	_, err := ChainIDFromNetwork(network)
	return err == nil
}

// IsSVMNetwork reports whether the network is a Solana chain.
func IsSVMNetwork(network string) bool {
	return strings.HasPrefix(network, "solana:")
}
