package source

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wanwatch/internal/config"
	"wanwatch/internal/utils"
	"wanwatch/internal/version"

	"go.uber.org/zap"
)

// maxBodySize bounds how much of the router reply is read
const maxBodySize = 1 << 20

// interfaceConfig is the per-interface part of the router reply
type interfaceConfig struct {
	IPv4 []struct {
		IPAddr *string `json:"ipaddr"`
	} `json:"ipv4"`
}

// RouterSource asks the router management API for the WAN address of one
// interface. The reply has the shape
//
//	{"<interface>": {"ipv4": [{"ipaddr": "a.b.c.d"}]}}
type RouterSource struct {
	config *config.RouterConfig
	client *http.Client
	logger *zap.Logger
}

// NewRouterSource creates a router source
func NewRouterSource(cfg *config.RouterConfig, logger *zap.Logger) *RouterSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
			MaxIdleConnsPerHost: 2,
			// routers commonly serve self-signed certificates
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec
		},
	}

	return &RouterSource{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// Name implements Source
func (s *RouterSource) Name() string {
	return "router"
}

// Lookup returns the first IPv4 address of the configured interface
func (s *RouterSource) Lookup(ctx context.Context) (string, bool) {
	ip, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("Failed to get router IP",
			zap.String("interface", s.config.Interface),
			zap.Error(err))
		return "", false
	}

	s.logger.Debug("Got router IP",
		zap.String("interface", s.config.Interface),
		zap.String("ip", ip))
	return ip, true
}

func (s *RouterSource) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(s.config.APIKey, s.config.APISecret)
	req.Header.Set("User-Agent", version.UserAgent(config.AppName))
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			s.logger.Debug("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("router returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return parseInterfaceIP(body, s.config.Interface)
}

// parseInterfaceIP extracts the first ipv4 ipaddr of iface from body
func parseInterfaceIP(body []byte, iface string) (string, error) {
	var interfaces map[string]json.RawMessage
	if err := json.Unmarshal(body, &interfaces); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}

	raw, ok := interfaces[iface]
	if !ok {
		return "", fmt.Errorf("interface %q not found in response", iface)
	}

	var ifc interfaceConfig
	if err := json.Unmarshal(raw, &ifc); err != nil {
		return "", fmt.Errorf("unexpected shape for interface %q: %w", iface, err)
	}
	if len(ifc.IPv4) == 0 {
		return "", fmt.Errorf("interface %q has no ipv4 entries", iface)
	}

	addr := ifc.IPv4[0].IPAddr
	if addr == nil {
		return "", fmt.Errorf("interface %q has no ipaddr", iface)
	}

	ip, ok := utils.NormalizeIPv4(*addr)
	if !ok {
		return "", fmt.Errorf("invalid IPv4 address %q", *addr)
	}
	return ip, nil
}
