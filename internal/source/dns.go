package source

import (
	"context"
	"net"
	"net/netip"
	"time"

	"wanwatch/internal/config"
	"wanwatch/internal/utils"

	"go.uber.org/zap"
)

// Resolver is the subset of *net.Resolver used for lookups
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// DNSSource resolves the hostname against a nameserver
type DNSSource struct {
	hostname string
	timeout  time.Duration
	resolver Resolver
	logger   *zap.Logger
}

// NewDNSSource creates a DNS source. An empty cfg.Nameserver uses the
// system resolver configuration.
func NewDNSSource(hostname string, cfg *config.DNSConfig, logger *zap.Logger) *DNSSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	resolver := net.DefaultResolver
	if cfg.Nameserver != "" {
		nameserver := cfg.Nameserver
		resolver = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: timeout}
				return d.DialContext(ctx, network, nameserver)
			},
		}
	}

	return NewDNSSourceWithResolver(hostname, timeout, resolver, logger)
}

// NewDNSSourceWithResolver creates a DNS source using resolver
func NewDNSSourceWithResolver(hostname string, timeout time.Duration, resolver Resolver, logger *zap.Logger) *DNSSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DNSSource{
		hostname: hostname,
		timeout:  timeout,
		resolver: resolver,
		logger:   logger,
	}
}

// Name implements Source
func (s *DNSSource) Name() string {
	return "dns"
}

// Lookup returns the first IPv4 address of the hostname
func (s *DNSSource) Lookup(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addrs, err := s.resolver.LookupNetIP(ctx, "ip", s.hostname)
	if err != nil {
		s.logger.Warn("Failed to lookup IP address",
			zap.String("hostname", s.hostname),
			zap.Error(err))
		return "", false
	}

	ip, ok := utils.FirstIPv4(addrs)
	if !ok {
		s.logger.Warn("No IPv4 addresses found for hostname",
			zap.String("hostname", s.hostname),
			zap.Int("addresses", len(addrs)))
		return "", false
	}

	s.logger.Debug("Resolved hostname",
		zap.String("hostname", s.hostname),
		zap.String("ip", ip))
	return ip, true
}
