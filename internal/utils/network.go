// Package utils holds small address helpers shared by the sources.
package utils

import (
	"net/netip"
	"strings"
)

// NormalizeIPv4 returns the dotted-decimal form of s if it holds an IPv4
// address (IPv4-mapped IPv6 forms are unmapped). Surrounding whitespace is
// ignored.
func NormalizeIPv4(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}

// FirstIPv4 returns the first IPv4 address in addrs.
func FirstIPv4(addrs []netip.Addr) (string, bool) {
	for _, a := range addrs {
		if a = a.Unmap(); a.Is4() {
			return a.String(), true
		}
	}
	return "", false
}
