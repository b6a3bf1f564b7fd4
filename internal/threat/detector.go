// Package threat scans credential-bearing strings for injection and markup
// patterns before they reach any other subsystem.
//
// The scan is stateless and runs the pattern table in a fixed priority
// order, returning the first matching category. The order is part of the
// contract: a payload containing both a script tag and a CRLF sequence
// always reports the script tag, so verdicts are deterministic and
// reproducible.
//
// # What this package must NOT do
//
//   - Sanitize or rewrite the input (detection only, never mutation).
//   - Log or otherwise retain the scanned value.
package threat

import "regexp"

// Category identifies the class of threat pattern found in a scanned string.
type Category string

const (
	// CategoryNone means no pattern matched.
	CategoryNone Category = ""
	// CategoryScriptInjection covers script tags, inline event handlers,
	// and the javascript: scheme.
	CategoryScriptInjection Category = "SCRIPT_INJECTION"
	// CategorySQLInjection covers SQL metacharacter/keyword combinations.
	CategorySQLInjection Category = "SQL_INJECTION_CHARS"
	// CategoryPathTraversal covers ../ and ..\ traversal sequences.
	CategoryPathTraversal Category = "PATH_TRAVERSAL"
	// CategoryTemplateInjection covers {{ }} and ${ } interpolation markers.
	CategoryTemplateInjection Category = "TEMPLATE_INJECTION"
	// CategoryHTMLInjection covers residual markup outside the script class.
	CategoryHTMLInjection Category = "HTML_INJECTION"
	// CategoryCRLFInjection covers raw and percent-encoded CR/LF sequences.
	CategoryCRLFInjection Category = "CRLF_INJECTION"
	// CategorySuspiciousContent covers generic dangerous-call patterns.
	CategorySuspiciousContent Category = "SUSPICIOUS_CONTENT"
)

type pattern struct {
	category Category
	re       *regexp.Regexp
}

// Patterns are compiled once and scanned in declaration order. Priority:
// script > SQL > traversal > template > markup > CRLF > generic calls.
var patterns = []pattern{
	{CategoryScriptInjection, regexp.MustCompile(`(?i)<\s*script\b`)},
	{CategoryScriptInjection, regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)},
	{CategoryScriptInjection, regexp.MustCompile(`(?i)javascript\s*:`)},
	{CategorySQLInjection, regexp.MustCompile(`(?i)(['";]|--|/\*)\s*.*\b(select|union|insert|update|delete|drop|alter|exec(ute)?)\b`)},
	{CategorySQLInjection, regexp.MustCompile(`(?i)\b(select|union|insert|update|delete|drop|alter|exec(ute)?)\b.*(['";]|--|/\*)`)},
	{CategoryPathTraversal, regexp.MustCompile(`\.\.[\\/]`)},
	{CategoryTemplateInjection, regexp.MustCompile(`\{\{[^}]*\}\}`)},
	{CategoryTemplateInjection, regexp.MustCompile(`\$\{[^}]*\}`)},
	{CategoryHTMLInjection, regexp.MustCompile(`<[a-zA-Z!/]`)},
	{CategoryCRLFInjection, regexp.MustCompile(`(?i)(\r|\n|%0d|%0a)`)},
	{CategorySuspiciousContent, regexp.MustCompile(`(?i)\b(eval|Function|setTimeout|setInterval)\s*\(`)},
}

// Scan returns the first matching category, or CategoryNone when the input
// is clean. The input is never modified or retained.
func Scan(s string) Category {
	for _, p := range patterns {
		if p.re.MatchString(s) {
			return p.category
		}
	}
	return CategoryNone
}
