// Package keys manages publisher keys for the off-chain planner.
//
// Pure, deterministic primitives (publisher-key formatting, role-seed
// derivation, account address computation) are stable. The filesystem-backed
// KeyStore is a local-first convenience surface and may change between
// releases.
package keys
