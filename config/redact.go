package config

import (
	"regexp"
	"strings"
)

const redacted = "***"

var (
	urlUserinfoExpr = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^/@\s]+@`)
	bearerExpr      = regexp.MustCompile(`(?i)(authorization:\s*(?:bearer|token)\s+)\S+`)
	dsnPasswordExpr = regexp.MustCompile(`(password=)\S+`)
)

// Redact scrubs secrets from s before it is logged or surfaced.  Explicit
// secrets are replaced wherever they appear, as are URL userinfo sections,
// authorization header values and key/value DSN passwords.
func Redact(s string, secrets ...string) string {
	for _, secret := range secrets {
		if len(secret) > 0 {
			s = strings.ReplaceAll(s, secret, redacted)
		}
	}
	s = urlUserinfoExpr.ReplaceAllString(s, "${1}"+redacted+"@")
	s = bearerExpr.ReplaceAllString(s, "${1}"+redacted)
	s = dsnPasswordExpr.ReplaceAllString(s, "${1}"+redacted)
	return s
}

// RedactError is a convenience wrapper around Redact for error values.
func RedactError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	return Redact(err.Error(), secrets...)
}
