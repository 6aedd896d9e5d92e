package catalog

// catalogSchema is the JSON Schema the pricing source must satisfy before
// any option-level validation runs. The document is a single object mapping
// each operation id to a non-empty array of payment options; an operation
// with zero options is a configuration error, not a runtime 402.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "array",
    "minItems": 1,
    "items": {
      "type": "object",
      "properties": {
        "chain_id": {
          "type": "integer",
          "minimum": 1,
          "description": "EVM chain id; the CAIP-2 network is derived as eip155:<chain_id>."
        },
        "network": {
          "type": "string",
          "pattern": "^(eip155|solana):.+$",
          "description": "CAIP-2 network identifier; alternative to chain_id for non-EVM chains."
        },
        "token_address": {
          "type": "string",
          "minLength": 1,
          "description": "Token contract address (EVM) or mint address (Solana)."
        },
        "token_amount": {
          "type": "integer",
          "minimum": 1,
          "description": "Required payment in atomic units."
        },
        "payee_address": {
          "type": "string",
          "minLength": 1,
          "description": "Recipient address for the payment."
        },
        "description": {
          "type": "string",
          "description": "Optional human-readable description of the charge."
        }
      },
      "required": ["token_address", "token_amount", "payee_address"],
      "additionalProperties": false
    }
  }
}`
