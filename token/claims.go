package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the client-visible subset of a JWT payload. Values are read
// without signature verification and must be treated as hints, never as
// proof of authenticity.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Introspect decodes the registered claims of a JWT-shaped credential
// without verifying its signature. Returns false when raw is not a
// well-formed JWT (shape-valid tokens with non-JSON payloads included).
func Introspect(raw string) (Claims, bool) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return Claims{}, false
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	var registered jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(raw, &registered); err != nil {
		return Claims{}, false
	}

	claims := Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, true
}

// Expired reports whether raw carries a readable exp claim that lies in the
// past. Tokens without a readable exp are never reported as expired; the
// remote profile check is the authority for those.
func Expired(raw string, now time.Time) bool {
	claims, ok := Introspect(raw)
	if !ok || claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
