package model

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`^[a-zA-Z]+://`)

// EnsureHTTPScheme prefixes https:// when url carries no scheme.
func EnsureHTTPScheme(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || schemeRe.MatchString(u) {
		return u
	}
	return "https://" + u
}

// Domain returns the host of u without a leading "www.", or "" when u
// does not parse.
func Domain(u string) string {
	if strings.TrimSpace(u) == "" {
		return ""
	}
	parsed, err := url.Parse(EnsureHTTPScheme(u))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// TruncateURL shortens u for use as a label: scheme and "www." are
// dropped and anything past 13 runes is replaced by "...".
func TruncateURL(u string) string {
	clean := strings.TrimPrefix(u, "https://")
	clean = strings.TrimPrefix(clean, "http://")
	clean = strings.TrimPrefix(clean, "www.")

	r := []rune(clean)
	if len(r) > 13 {
		return string(r[:13]) + "..."
	}
	return clean
}
