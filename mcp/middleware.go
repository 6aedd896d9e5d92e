// Package mcp provides the agent-tool surface of the payment gate, built on
// the mcp-go server. Paid tools are gated by the same gate.Dispatcher as the
// REST surfaces: the tool name is the operation id, the proof travels in the
// tool call's _meta, and the settlement receipt is injected into the
// result's _meta.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/xymanchick/x402gate"
	"github.com/xymanchick/x402gate/gate"
)

// Meta keys carrying payment material on the agent-tool surface, mirroring
// the X-PAYMENT / X-PAYMENT-RESPONSE headers of the REST surface.
const (
	// PaymentMetaKey is where the client places its payment proof in the
	// tool call params _meta: either the base64-encoded header form or the
	// decoded JSON object.
	PaymentMetaKey = "x402/payment"

	// ReceiptMetaKey is where the encoded settlement receipt lands in the
	// tool result _meta after a successful settlement.
	ReceiptMetaKey = "x402/payment-response"

	// ChallengeMetaKey carries the structured payment-required body on a
	// challenged tool call, alongside the JSON text content.
	ChallengeMetaKey = "x402/payment-required"
)

// Config holds the configuration for the MCP payment middleware.
type Config struct {
	// Dispatcher is the shared gate dispatcher. Required.
	Dispatcher *gate.Dispatcher

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer creates an MCP server with the payment middleware installed.
// Tools priced in the catalog are gated; everything else passes through.
func NewServer(name, version string, cfg Config, opts ...mcpserver.ServerOption) *mcpserver.MCPServer {
	opts = append([]mcpserver.ServerOption{
		mcpserver.WithToolHandlerMiddleware(NewToolMiddleware(cfg)),
	}, opts...)
	return mcpserver.NewMCPServer(name, version, opts...)
}

// NewToolMiddleware returns a tool-handler middleware that gates paid tools
// through the shared dispatcher. The wrapped handler runs exactly once and
// only after verification; settlement follows a successful result and can
// never retract it.
func NewToolMiddleware(cfg Config) func(mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
			operation := req.Params.Name
			resource := "mcp://tools/" + operation

			adm, challenge := cfg.Dispatcher.Admit(ctx, operation, resource, extractProof(req))
			if challenge != nil {
				return paymentRequiredResult(challenge), nil
			}

			if !adm.Priced {
				return next(ctx, req)
			}

			result, err := next(gate.WithAdmission(ctx, adm), req)
			if err != nil {
				logger.WarnContext(ctx, "tool handler failed, skipping settlement",
					"tool", operation, "error", err)
				return result, err
			}
			if result != nil && result.IsError {
				logger.WarnContext(ctx, "tool returned error result, skipping settlement",
					"tool", operation)
				return result, nil
			}

			receipt, settleErr := cfg.Dispatcher.Settle(ctx, adm)
			if settleErr == nil && receipt != nil {
				attachReceipt(result, receipt, logger)
			}
			// On settlement failure the result is returned without a
			// receipt; the dispatcher already logged for reconciliation.
			return result, nil
		}
	}
}

// extractProof pulls the payment proof out of params._meta and normalizes
// it to the encoded header form the codec expects. Returns "" when absent;
// malformed values are passed through so decoding fails with the malformed
// challenge rather than the missing one.
func extractProof(req mcpproto.CallToolRequest) string {
	meta := req.Params.Meta
	if meta == nil || meta.AdditionalFields == nil {
		return ""
	}
	raw, ok := meta.AdditionalFields[PaymentMetaKey]
	if !ok {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "\x00"
		}
		return base64.StdEncoding.EncodeToString(data)
	}
}

func paymentRequiredResult(challenge *gate.Challenge) *mcpproto.CallToolResult {
	body, _ := json.Marshal(challenge.Body)
	result := mcpproto.NewToolResultError(string(body))
	result.Meta = &mcpproto.Meta{
		AdditionalFields: map[string]any{ChallengeMetaKey: challenge.Body},
	}
	return result
}

func attachReceipt(result *mcpproto.CallToolResult, receipt *x402gate.SettleResponse, logger *slog.Logger) {
	if result == nil {
		return
	}
	encoded, err := x402gate.EncodeSettlement(*receipt)
	if err != nil {
		logger.Warn("failed to encode settlement receipt", "error", err)
		return
	}
	if result.Meta == nil {
		result.Meta = &mcpproto.Meta{}
	}
	if result.Meta.AdditionalFields == nil {
		result.Meta.AdditionalFields = make(map[string]any)
	}
	result.Meta.AdditionalFields[ReceiptMetaKey] = encoded
}
