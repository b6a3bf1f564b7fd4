// Package broadcast propagates login and logout transitions between
// independent engine instances.
//
// The delivery contract mirrors the browser storage-event model the
// technique descends from: a published message reaches every subscriber
// EXCEPT the one sharing the publisher's origin, at most once each, with no
// polling. Propagation is asynchronous and eventually consistent — a brief
// interval during which one instance still reports stale state after
// another instance's transition is expected, not a defect.
//
// Two transports are provided: [Memory] for instances inside one process,
// and [Redis] for instances spread across processes sharing a Redis
// deployment. Both drop messages for slow consumers rather than blocking
// the publisher.
package broadcast
