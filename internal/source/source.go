// Package source fetches the two addresses the monitor compares: the WAN
// address the router reports and the address DNS publishes for the
// hostname. Sources never return errors; a failed lookup is reported as
// absent and logged.
package source

import (
	"context"
	"fmt"

	"wanwatch/internal/config"

	"go.uber.org/zap"
)

// Source yields one IPv4 address, or false when it is unavailable
type Source interface {
	Name() string
	Lookup(ctx context.Context) (string, bool)
}

// NewDNS creates the published-address source selected by cfg.DNS.Provider
func NewDNS(cfg *config.Config, logger *zap.Logger) (Source, error) {
	switch cfg.DNS.Provider {
	case config.DNSProviderResolver, "":
		return NewDNSSource(cfg.Hostname, &cfg.DNS, logger), nil
	case config.DNSProviderCloudflare:
		return NewCloudflareSource(cfg.Hostname, &cfg.DNS, logger)
	default:
		return nil, fmt.Errorf("unknown dns provider %q", cfg.DNS.Provider)
	}
}
