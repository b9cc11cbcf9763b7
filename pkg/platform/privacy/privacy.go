// Package privacy masks personal identifiers before they reach logs.
package privacy

import (
	"net"
	"strings"
)

// MaskNationalID keeps the first and last digit and hides the rest, so log
// lines can be correlated by an operator holding the full ID without exposing it.
func MaskNationalID(id string) string {
	if len(id) <= 2 {
		return strings.Repeat("*", len(id))
	}
	return id[:1] + strings.Repeat("*", len(id)-2) + id[len(id)-1:]
}

// AnonymizeIP zeroes the host part of an address: the last octet for IPv4,
// everything past the /48 prefix for IPv6. Unparseable input is returned as "invalid".
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return net.IPv4(v4[0], v4[1], v4[2], 0).String()
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
