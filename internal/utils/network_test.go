package utils

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.2.3.4", "1.2.3.4", true},
		{" 10.0.0.1\n", "10.0.0.1", true},
		{"::ffff:192.0.2.7", "192.0.2.7", true},
		{"2001:db8::1", "", false},
		{"", "", false},
		{"not-an-ip", "", false},
		{"1.2.3.4/24", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeIPv4(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFirstIPv4(t *testing.T) {
	addrs := []netip.Addr{
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddr("198.51.100.4"),
		netip.MustParseAddr("198.51.100.5"),
	}
	ip, ok := FirstIPv4(addrs)
	assert.True(t, ok)
	assert.Equal(t, "198.51.100.4", ip)

	_, ok = FirstIPv4(addrs[:1])
	assert.False(t, ok)

	_, ok = FirstIPv4(nil)
	assert.False(t, ok)
}
