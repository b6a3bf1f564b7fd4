// Package rate provides the sliding-window attempt limiter that gates
// credential validation traffic.
//
// # Window semantics
//
// Each caller key owns an ordered list of attempt timestamps. Every call
// appends the current time, drops entries older than the window, and then
// compares the surviving count against the budget. A throttled call still
// counts toward the window, so hammering a throttled key extends the
// throttle rather than escaping it.
//
// State is process-local to one runtime instance by design: validation
// storms are a per-instance symptom, and a shared store would turn a local
// guard into a point of contention.
//
// # What this package must NOT do
//
//   - Implement validation policy (that lives in the token package).
//   - Be imported outside this module.
package rate
