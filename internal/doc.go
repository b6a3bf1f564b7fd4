// Package internal groups the engine's private building blocks.
//
// # Sub-packages
//
//   - breaker — recursion circuit breaker that suppresses runaway auth-check loops
//   - entropy — Shannon entropy and character-class scoring for credential indicators
//   - rate — sliding-window rate limit primitives keyed per client
//   - requests — cancellable request manager with per-operation timeouts
//   - threat — pattern scanner for injection payloads in untrusted input
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
