package models

import "strings"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so that an identifier containing ':' cannot address a neighbouring bucket.
// IPv6 addresses are the common case: "2001:db8::1" becomes "2001_db8__1".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
