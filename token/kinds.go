package token

// ErrorKind tags a failed validation with a stable, machine-readable code.
// Codes are part of the public contract and never change spelling.
type ErrorKind string

const (
	// KindNone is the zero kind carried by valid results.
	KindNone ErrorKind = ""

	// Input class: the value never qualified as a candidate token.

	// KindEmptyToken is an exported constant or variable used by the session engine.
	KindEmptyToken ErrorKind = "EMPTY_TOKEN"
	// KindInvalidTokenType is an exported constant or variable used by the session engine.
	KindInvalidTokenType ErrorKind = "INVALID_TOKEN_TYPE"
	// KindWhitespaceOnlyToken is an exported constant or variable used by the session engine.
	KindWhitespaceOnlyToken ErrorKind = "WHITESPACE_ONLY_TOKEN"
	// KindTokenTooShort is an exported constant or variable used by the session engine.
	KindTokenTooShort ErrorKind = "TOKEN_TOO_SHORT"
	// KindTokenTooLong is an exported constant or variable used by the session engine.
	KindTokenTooLong ErrorKind = "TOKEN_TOO_LONG"

	// Format class: the value failed the shape-specific structural check.

	// KindInvalidJWTFormat is an exported constant or variable used by the session engine.
	KindInvalidJWTFormat ErrorKind = "INVALID_JWT_FORMAT"
	// KindEmptyJWTParts is an exported constant or variable used by the session engine.
	KindEmptyJWTParts ErrorKind = "EMPTY_JWT_PARTS"
	// KindInvalidBase64URLEncoding is an exported constant or variable used by the session engine.
	KindInvalidBase64URLEncoding ErrorKind = "INVALID_BASE64URL_ENCODING"
	// KindInvalidTokenFormat is an exported constant or variable used by the session engine.
	KindInvalidTokenFormat ErrorKind = "INVALID_TOKEN_FORMAT"

	// Security class: an injection pattern or entropy anomaly was found.

	// KindScriptInjection is an exported constant or variable used by the session engine.
	KindScriptInjection ErrorKind = "SCRIPT_INJECTION"
	// KindSQLInjectionChars is an exported constant or variable used by the session engine.
	KindSQLInjectionChars ErrorKind = "SQL_INJECTION_CHARS"
	// KindPathTraversal is an exported constant or variable used by the session engine.
	KindPathTraversal ErrorKind = "PATH_TRAVERSAL"
	// KindTemplateInjection is an exported constant or variable used by the session engine.
	KindTemplateInjection ErrorKind = "TEMPLATE_INJECTION"
	// KindHTMLInjection is an exported constant or variable used by the session engine.
	KindHTMLInjection ErrorKind = "HTML_INJECTION"
	// KindCRLFInjection is an exported constant or variable used by the session engine.
	KindCRLFInjection ErrorKind = "CRLF_INJECTION"
	// KindSuspiciousContent is an exported constant or variable used by the session engine.
	KindSuspiciousContent ErrorKind = "SUSPICIOUS_CONTENT"
	// KindLowEntropyToken is an exported constant or variable used by the session engine.
	KindLowEntropyToken ErrorKind = "LOW_ENTROPY_TOKEN"

	// Throttling class.

	// KindRateLimited is an exported constant or variable used by the session engine.
	KindRateLimited ErrorKind = "RATE_LIMITED"
)

// Class groups error kinds for metrics and propagation policy.
type Class uint8

const (
	// ClassNone is an exported constant or variable used by the session engine.
	ClassNone Class = iota
	// ClassInput is an exported constant or variable used by the session engine.
	ClassInput
	// ClassFormat is an exported constant or variable used by the session engine.
	ClassFormat
	// ClassSecurity is an exported constant or variable used by the session engine.
	ClassSecurity
	// ClassThrottling is an exported constant or variable used by the session engine.
	ClassThrottling
)

// Class returns the taxonomy class of the kind.
func (k ErrorKind) Class() Class {
	switch k {
	case KindEmptyToken, KindInvalidTokenType, KindWhitespaceOnlyToken, KindTokenTooShort, KindTokenTooLong:
		return ClassInput
	case KindInvalidJWTFormat, KindEmptyJWTParts, KindInvalidBase64URLEncoding, KindInvalidTokenFormat:
		return ClassFormat
	case KindScriptInjection, KindSQLInjectionChars, KindPathTraversal, KindTemplateInjection,
		KindHTMLInjection, KindCRLFInjection, KindSuspiciousContent, KindLowEntropyToken:
		return ClassSecurity
	case KindRateLimited:
		return ClassThrottling
	default:
		return ClassNone
	}
}

// Result is the verdict for one validation call. Produced fresh per call,
// never shared, never mutated.
type Result struct {
	Valid bool
	Error ErrorKind
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(kind ErrorKind) Result {
	return Result{Valid: false, Error: kind}
}
