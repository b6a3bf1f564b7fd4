// Package session provides Redis-backed persistence and compact binary
// encoding for session snapshots, so an engine restarted on the same device
// key can restore its last confirmed identity before the first remote check.
//
// # Binary encoding
//
// Snapshots are stored in Redis as a compact binary format (schema versions
// v1 and v2) with forward migration on read. The encoder is append-only: new
// versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Snapshot] model.
// It does NOT validate tokens, talk to the backend API, or decide whether a
// restored snapshot is still trustworthy — those responsibilities belong to
// the Engine, which always revalidates a restored session on its first check.
//
// # What this package must NOT do
//
//   - Import authcore, token, or broadcast (no upward imports).
//   - Store passwords, bearer secrets, or any other credential material.
//   - Make authentication decisions based on snapshot contents.
package session
