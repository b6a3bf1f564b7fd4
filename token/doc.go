// Package token validates credential-bearing strings of unknown provenance:
// JWT-shaped values, opaque session tokens, UUIDs, and base64 blobs.
//
// Validation is shape-only. Nothing here verifies a cryptographic signature —
// the client may never hold the verification key — so a "valid" verdict means
// structurally plausible and free of injection patterns, not authentic.
//
// [Validator.Validate] never panics and never returns a Go error: every
// outcome, including malicious input, resolves to a tagged [Result]. The
// pipeline is gated by a sliding-window rate limiter; throttled callers skip
// the expensive pattern and entropy stages entirely.
//
// # What this package must NOT do
//
//   - Log, store, or echo the raw credential value.
//   - Verify signatures or call the network.
package token
