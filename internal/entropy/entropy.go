// Package entropy scores the statistical randomness of candidate session
// tokens. A healthy server-issued token has a near-uniform character
// distribution; placeholder strings ("aaaa...", "test-token") and most
// hand-crafted probe values do not.
//
// The score is Shannon entropy in bits per character over the byte
// distribution of the input. Inputs shorter than the configured sample
// minimum are skipped entirely: length policy is enforced upstream, and
// entropy estimates over tiny samples are noise.
package entropy

import "math"

// Analyzer checks token randomness against a configured floor.
//
// The zero value is unusable; construct with New so defaults apply.
type Analyzer struct {
	minBits   float64
	minSample int
}

// Config holds entropy analyzer tuning parameters.
type Config struct {
	// MinBits is the minimum acceptable Shannon entropy in bits per
	// character. Values at or above the floor pass.
	MinBits float64
	// MinSample is the minimum input length worth analyzing. Shorter
	// inputs are accepted without analysis.
	MinSample int
}

const (
	defaultMinBits   = 3.0
	defaultMinSample = 16
)

// New creates an Analyzer, substituting defaults for zero fields.
func New(cfg Config) *Analyzer {
	if cfg.MinBits <= 0 {
		cfg.MinBits = defaultMinBits
	}
	if cfg.MinSample <= 0 {
		cfg.MinSample = defaultMinSample
	}
	return &Analyzer{minBits: cfg.MinBits, minSample: cfg.MinSample}
}

// Acceptable reports whether the input clears the entropy floor.
// Inputs shorter than the sample minimum always pass.
func (a *Analyzer) Acceptable(s string) bool {
	if a == nil {
		return true
	}
	if len(s) < a.minSample {
		return true
	}
	return Bits(s) >= a.minBits
}

// Bits computes Shannon entropy in bits per character over the byte
// distribution of s. Returns 0 for the empty string.
func Bits(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	total := float64(len(s))
	var bits float64
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		bits -= p * math.Log2(p)
	}
	return bits
}
