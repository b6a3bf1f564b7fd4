// Package authcore provides the client-side authentication integrity and
// session engine for the onboarding portal: credential validation with
// injection-pattern and entropy defenses, sliding-window rate limiting, a
// recursion circuit breaker, cancellable timeout-bound requests, and
// eventually consistent session synchronization across runtime contexts.
//
// The package is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Session, LoginResult, MetricsSnapshot, etc.).
// All internal coordination — threat scanning, entropy analysis, rate
// limiting, request tracking — lives under internal/ and is never exported.
//
// # Architecture boundaries
//
// Each runtime context owns exactly one [Engine] built through
// [Builder.Build]. Engines never share hidden state: the rate limiter,
// circuit breaker, and request registry are owned fields, so independent
// instances (parallel tests included) are fully isolated. Cross-context
// propagation goes exclusively through a [broadcast.Broadcaster], and
// optional restart hydration through a [session.Store] snapshot that carries
// identity fields only.
//
// # What this package must NOT do
//
//   - Verify cryptographic signatures (the client never holds the key).
//   - Persist raw credential material anywhere, in any form.
//   - Echo attacker-controlled input back through errors or audit events.
package authcore
