package internaldefs

import (
	authcore "github.com/rodaquino-OMNI/authcore"
)

// CounterDef defines a public type used by authcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authcore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricLoginDeduped, Name: "authcore_login_deduped_total", Help: "Login attempts that joined an already in-flight call."},
	{ID: authcore.MetricCheckSuccess, Name: "authcore_check_success_total", Help: "Successful auth checks."},
	{ID: authcore.MetricCheckFailure, Name: "authcore_check_failure_total", Help: "Failed auth checks."},
	{ID: authcore.MetricCheckSkippedFresh, Name: "authcore_check_skipped_fresh_total", Help: "Auth checks debounced inside the freshness window."},
	{ID: authcore.MetricCheckDeduped, Name: "authcore_check_deduped_total", Help: "Auth checks joined to an in-flight call."},
	{ID: authcore.MetricCheckSuppressed, Name: "authcore_check_suppressed_total", Help: "Auth checks refused by the recursion circuit breaker."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful token refreshes."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricSessionExpired, Name: "authcore_session_expired_total", Help: "Sessions found expired or invalid by the remote side."},
	{ID: authcore.MetricValidationFailure, Name: "authcore_validation_failure_total", Help: "Credential validation failures."},
	{ID: authcore.MetricThreatDetected, Name: "authcore_threat_detected_total", Help: "Credentials rejected for threat patterns."},
	{ID: authcore.MetricLowEntropyToken, Name: "authcore_low_entropy_token_total", Help: "Credentials rejected for insufficient entropy."},
	{ID: authcore.MetricRateLimitHit, Name: "authcore_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: authcore.MetricRequestTimeout, Name: "authcore_request_timeout_total", Help: "Remote calls that exceeded their deadline."},
	{ID: authcore.MetricRequestCancelled, Name: "authcore_request_cancelled_total", Help: "Remote calls interrupted by cancellation."},
	{ID: authcore.MetricStaleResultDiscarded, Name: "authcore_stale_result_discarded_total", Help: "In-flight results voided by a newer logout."},
	{ID: authcore.MetricBroadcastSent, Name: "authcore_broadcast_sent_total", Help: "Session sync messages published."},
	{ID: authcore.MetricBroadcastApplied, Name: "authcore_broadcast_applied_total", Help: "Session sync messages applied from peers."},
	{ID: authcore.MetricBroadcastReplayDropped, Name: "authcore_broadcast_replay_dropped_total", Help: "Duplicate sync messages dropped."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricCheckLatency, Name: "authcore_check_latency_seconds", Help: "Auth check latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
