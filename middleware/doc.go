// Package middleware exposes HTTP guard adapters built on top of the
// authcore session engine.
//
// # Guards
//
//   - [RequireSession] — admits requests only while the engine's session
//     is authenticated, re-confirming through the engine's check pipeline.
//   - [RequireValidToken] — shape-validates the bearer token without any
//     network traffic.
//
// Each guard injects its verdict into the request context for downstream
// handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement validation logic itself — all decisions are delegated to the
// engine.
//
// # What this package must NOT do
//
//   - Inspect credential contents directly (delegates to the engine).
//   - Echo the rejected token back in any response.
package middleware
