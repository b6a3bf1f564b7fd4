package token

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rodaquino-OMNI/authcore/internal/entropy"
	"github.com/rodaquino-OMNI/authcore/internal/rate"
	"github.com/rodaquino-OMNI/authcore/internal/threat"
)

// Config holds validator tuning parameters.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	MinLength        int
	MaxLength        int
	MinEntropyBits   float64
	MinEntropySample int
	RateLimit        rate.Config
}

const (
	defaultMinLength = 8
	defaultMaxLength = 4096
)

// Validator composes format checks, threat-pattern scanning, and entropy
// analysis into one verdict. Safe for concurrent use. Each instance owns its
// rate-limiter state; independent validators never share buckets.
type Validator struct {
	config   Config
	limiter  *rate.Limiter
	analyzer *entropy.Analyzer
}

// NewValidator creates a [Validator], substituting defaults for zero config
// fields.
func NewValidator(cfg Config) *Validator {
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaultMinLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = defaultMaxLength
	}
	return &Validator{
		config:  cfg,
		limiter: rate.New(cfg.RateLimit),
		analyzer: entropy.New(entropy.Config{
			MinBits:   cfg.MinEntropyBits,
			MinSample: cfg.MinEntropySample,
		}),
	}
}

var (
	proxyTokenRe  = regexp.MustCompile(`^id\|[A-Za-z0-9]{32,}$`)
	alnumTokenRe  = regexp.MustCompile(`^[A-Za-z0-9]{32,}$`)
	base64TokenRe = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
)

// Validate runs the fixed validation pipeline over raw. It never panics and
// never returns a Go error; every outcome is a tagged [Result].
//
// Pipeline order: type and emptiness, whitespace, length bounds, rate
// limiter (a throttled caller skips every remaining stage), then
// shape-specific structure, threat scan, and — for opaque shapes only —
// entropy. clientKey selects the rate-limit bucket; empty means the shared
// anonymous bucket.
func (v *Validator) Validate(raw any, clientKey string) Result {
	if v == nil {
		return invalid(KindEmptyToken)
	}

	if raw == nil {
		return invalid(KindEmptyToken)
	}
	s, ok := raw.(string)
	if !ok {
		return invalid(KindInvalidTokenType)
	}
	if s == "" {
		return invalid(KindEmptyToken)
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return invalid(KindWhitespaceOnlyToken)
	}

	// Bounds count characters, not bytes, so multibyte input cannot slip
	// past the minimum.
	length := utf8.RuneCountInString(trimmed)
	if length < v.config.MinLength {
		return invalid(KindTokenTooShort)
	}
	if length > v.config.MaxLength {
		return invalid(KindTokenTooLong)
	}

	// Throttled callers do not get the expensive stages. Deliberate
	// trade-off: a flooding caller learns nothing beyond RATE_LIMITED.
	if !v.limiter.Allow(clientKey) {
		return invalid(KindRateLimited)
	}

	// The threat scan runs before any structural check so hostile payloads
	// report their threat category rather than a generic format failure.
	// A traversal probe happens to contain dots; it must not be mistaken
	// for a malformed JWT.
	if kind := scanThreats(trimmed); kind != KindNone {
		return invalid(kind)
	}

	if strings.Contains(trimmed, ".") {
		return validateJWTShaped(trimmed)
	}
	return v.validateOpaque(trimmed)
}

// validateJWTShaped checks the three-segment dot structure. Segments are
// checked for shape only; the signature bytes are never verified.
func validateJWTShaped(s string) Result {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return invalid(KindInvalidJWTFormat)
	}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return invalid(KindEmptyJWTParts)
		}
		if !isBase64URL(part) {
			return invalid(KindInvalidBase64URLEncoding)
		}
	}
	return valid()
}

// validateOpaque accepts proxy-issued tokens (id|random), canonical UUIDs,
// long alphanumeric strings, and standard base64 blobs.
func (v *Validator) validateOpaque(s string) Result {
	if !isOpaqueShaped(s) {
		return invalid(KindInvalidTokenFormat)
	}

	if !v.analyzer.Acceptable(s) {
		return invalid(KindLowEntropyToken)
	}
	return valid()
}

// Cleanup removes expired rate-limiter buckets. Callable independently for
// periodic housekeeping and test isolation.
func (v *Validator) Cleanup() {
	if v == nil {
		return
	}
	v.limiter.Cleanup()
}

// Attempts reports the rate-limit attempts currently recorded for clientKey.
func (v *Validator) Attempts(clientKey string) int {
	if v == nil {
		return 0
	}
	return v.limiter.Attempts(clientKey)
}

// ResetClient clears the rate-limit bucket for clientKey.
func (v *Validator) ResetClient(clientKey string) {
	if v == nil {
		return
	}
	v.limiter.Reset(clientKey)
}

func isOpaqueShaped(s string) bool {
	if proxyTokenRe.MatchString(s) {
		return true
	}
	if isCanonicalUUID(s) {
		return true
	}
	if alnumTokenRe.MatchString(s) {
		return true
	}
	return base64TokenRe.MatchString(s)
}

// isCanonicalUUID accepts only the 36-character dashed form. uuid.Parse is
// more lenient (braces, urn prefix), so the length gate comes first.
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

func scanThreats(s string) ErrorKind {
	switch threat.Scan(s) {
	case threat.CategoryScriptInjection:
		return KindScriptInjection
	case threat.CategorySQLInjection:
		return KindSQLInjectionChars
	case threat.CategoryPathTraversal:
		return KindPathTraversal
	case threat.CategoryTemplateInjection:
		return KindTemplateInjection
	case threat.CategoryHTMLInjection:
		return KindHTMLInjection
	case threat.CategoryCRLFInjection:
		return KindCRLFInjection
	case threat.CategorySuspiciousContent:
		return KindSuspiciousContent
	default:
		return KindNone
	}
}
