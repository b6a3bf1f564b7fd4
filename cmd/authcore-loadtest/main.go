package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	authcore "github.com/rodaquino-OMNI/authcore"
	"github.com/rodaquino-OMNI/authcore/token"
)

func main() {
	var (
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (validate + check)")
		hostilePct  = flag.Int("hostile-pct", 10, "percentage of hostile inputs in the validate phase")
		apiLatency  = flag.Duration("api-latency", 500*time.Microsecond, "simulated backend latency")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}
	if *hostilePct < 0 || *hostilePct > 100 {
		fmt.Fprintln(os.Stderr, "hostile-pct must be in [0,100]")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := authcore.DefaultConfig()
	cfg.Sync.Enabled = false
	// Disable the debounce and widen throttles so every op exercises the
	// hot path rather than the cheap short-circuits.
	cfg.Session.FreshnessWindow = 0
	cfg.RateLimit.MaxAttempts = 1 << 30
	cfg.Breaker.MaxRecursion = 1 << 30
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := authcore.New().
		WithConfig(cfg).
		WithAPIClient(newLoadAPI(*apiLatency)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if _, err := engine.Login(ctx, authcore.Credentials{
		Email:    "load@example.com",
		Password: "load-test-password",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed login: %v\n", err)
		os.Exit(1)
	}

	validateStats := runValidatePhase(engine, *ops, *concurrency, *hostilePct)
	checkStats := runCheckPhase(ctx, engine, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("check", checkStats)

	snapshot := engine.MetricsSnapshot()
	fmt.Printf("check_success=%d check_failure=%d validation_failure=%d threat_detected=%d\n",
		snapshot.Counters[authcore.MetricCheckSuccess],
		snapshot.Counters[authcore.MetricCheckFailure],
		snapshot.Counters[authcore.MetricValidationFailure],
		snapshot.Counters[authcore.MetricThreatDetected],
	)
}

func runValidatePhase(engine *authcore.Engine, ops, concurrency, hostilePct int) phaseStats {
	corpus := buildCorpus(hostilePct)

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				sample := corpus[r.Intn(len(corpus))]
				t0 := time.Now()
				verdict := engine.ValidateToken(sample.value, fmt.Sprintf("worker-%d", worker))
				d := time.Since(t0)
				if verdict.Valid != sample.wantValid && verdict.Error != token.KindRateLimited {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runCheckPhase(ctx context.Context, engine *authcore.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := engine.CheckAuth(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

type corpusEntry struct {
	value     string
	wantValid bool
}

// buildCorpus mixes well-formed tokens with hostile and malformed inputs at
// roughly hostilePct percent.
func buildCorpus(hostilePct int) []corpusEntry {
	benign := []corpusEntry{
		{"a1B2c3D4e5F6g7H8i9J0k1L2m3N4o5P6", true},
		{"Zz9Yy8Xx7Ww6Vv5Uu4Tt3Ss2Rr1Qq0Pp", true},
		{"q7W8e9R0t1Y2u3I4o5P6a7S8d9F0g1H2", true},
	}
	hostile := []corpusEntry{
		{"<script>alert(1)</script>aaaaaaaaaaaa", false},
		{"'; DROP TABLE sessions --aaaaaaaaaa", false},
		{"../../etc/passwd/aaaaaaaaaaaaaaaaaa", false},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"", false},
	}

	corpus := make([]corpusEntry, 0, 100)
	for len(corpus) < 100 {
		if len(corpus)%100 < hostilePct {
			corpus = append(corpus, hostile[len(corpus)%len(hostile)])
		} else {
			corpus = append(corpus, benign[len(corpus)%len(benign)])
		}
	}
	return corpus
}

// loadAPI is an in-process backend stub with configurable latency.
type loadAPI struct {
	latency time.Duration
	user    authcore.UserSnapshot
}

func newLoadAPI(latency time.Duration) *loadAPI {
	return &loadAPI{
		latency: latency,
		user: authcore.UserSnapshot{
			ID:    "load-user",
			Email: "load@example.com",
		},
	}
}

func (a *loadAPI) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.latency):
		return nil
	}
}

func (a *loadAPI) Login(ctx context.Context, creds authcore.Credentials) (*authcore.LoginResponse, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	return &authcore.LoginResponse{
		User:  a.user,
		Token: "a1B2c3D4e5F6g7H8i9J0k1L2m3N4o5P6",
	}, nil
}

func (a *loadAPI) GetProfile(ctx context.Context) (*authcore.UserSnapshot, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	user := a.user
	return &user, nil
}

func (a *loadAPI) Logout(ctx context.Context) error {
	return a.wait(ctx)
}

func (a *loadAPI) Refresh(ctx context.Context) (*authcore.RefreshResponse, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	return &authcore.RefreshResponse{Token: "z9Y8x7W6v5U4t3S2r1Q0p9O8n7M6l5K4"}, nil
}
