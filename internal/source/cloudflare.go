package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wanwatch/internal/config"
	"wanwatch/internal/utils"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
)

// CloudflareSource reads the published A record straight from the
// Cloudflare API, bypassing resolver caches.
type CloudflareSource struct {
	hostname string
	timeout  time.Duration
	api      *cloudflare.API
	logger   *zap.Logger

	mu     sync.Mutex
	zoneID string
}

// NewCloudflareSource creates a Cloudflare source authenticated by cfg.CloudflareToken
func NewCloudflareSource(hostname string, cfg *config.DNSConfig, logger *zap.Logger) (*CloudflareSource, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	api, err := cloudflare.NewWithAPIToken(cfg.CloudflareToken,
		cloudflare.HTTPClient(&http.Client{Timeout: timeout}),
		cloudflare.UsingRetryPolicy(0, 1, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}

	return NewCloudflareSourceWithAPI(hostname, timeout, api, logger), nil
}

// NewCloudflareSourceWithAPI creates a Cloudflare source using api
func NewCloudflareSourceWithAPI(hostname string, timeout time.Duration, api *cloudflare.API, logger *zap.Logger) *CloudflareSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudflareSource{
		hostname: hostname,
		timeout:  timeout,
		api:      api,
		logger:   logger,
	}
}

// Name implements Source
func (s *CloudflareSource) Name() string {
	return "cloudflare"
}

// Lookup returns the content of the first A record for the hostname
func (s *CloudflareSource) Lookup(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ip, err := s.lookup(ctx)
	if err != nil {
		s.logger.Warn("Failed to read DNS record from cloudflare",
			zap.String("hostname", s.hostname),
			zap.Error(err))
		return "", false
	}

	s.logger.Debug("Read DNS record from cloudflare",
		zap.String("hostname", s.hostname),
		zap.String("ip", ip))
	return ip, true
}

func (s *CloudflareSource) lookup(ctx context.Context) (string, error) {
	zid, err := s.zone(ctx)
	if err != nil {
		return "", err
	}

	records, _, err := s.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zid), cloudflare.ListDNSRecordsParams{
		Type: "A",
		Name: s.hostname,
		ResultInfo: cloudflare.ResultInfo{
			Page:    1,
			PerPage: 100,
		},
	})
	if err != nil {
		return "", fmt.Errorf("unable to list DNS records: %w", err)
	}

	for _, r := range records {
		if ip, ok := utils.NormalizeIPv4(r.Content); ok {
			return ip, nil
		}
	}
	return "", fmt.Errorf("no A record found for %s", s.hostname)
}

// zone returns the ID of the longest zone containing the hostname. The
// result is cached after the first successful lookup.
func (s *CloudflareSource) zone(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zoneID != "" {
		return s.zoneID, nil
	}

	zones, err := s.api.ListZones(ctx)
	if err != nil {
		return "", fmt.Errorf("error listing zones: %w", err)
	}

	zid, err := matchZone(s.hostname, zones)
	if err != nil {
		return "", err
	}
	s.zoneID = zid
	return zid, nil
}

func matchZone(hostname string, zones []cloudflare.Zone) (string, error) {
	hostname = strings.ToLower(hostname)
	best, zid := 0, ""
	for _, z := range zones {
		name := strings.ToLower(z.Name)
		if hostname != name && !strings.HasSuffix(hostname, "."+name) {
			continue
		}
		if len(name) > best {
			best, zid = len(name), z.ID
		}
	}
	if zid == "" {
		return "", fmt.Errorf("unable to find a zone matching %q", hostname)
	}
	return zid, nil
}
