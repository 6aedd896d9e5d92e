// Package x402gate implements the x402 pay-per-call HTTP authorization
// protocol: a shared payment gate that fronts priced operations exposed by
// otherwise-independent service processes.
//
// The root package holds the protocol wire types and the pure pieces of the
// gate (header codec, requirement matching, network derivation). The moving
// parts live in subpackages:
//
//   - catalog: the immutable per-process pricing table
//   - facilitator: the client for the external verify/settle authority
//   - gate: the dispatcher that orchestrates challenge, verify, and settle
//   - http, http/gin: REST surface adapters
//   - mcp: agent-tool surface adapter
//
// Every surface routes through the same gate.Dispatcher, so pricing and
// verification behavior is indistinguishable by surface.
package x402gate
