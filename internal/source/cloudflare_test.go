package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const resultInfo = `"result_info": {"page": 1, "per_page": 100, "count": %d, "total_count": %d, "total_pages": 1}`

func cloudflareServer(t *testing.T, records string, count int, zoneCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(zoneCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success": true, "errors": [], "messages": [], "result": [
			{"id": "zone-com", "name": "com"},
			{"id": "zone-example", "name": "example.com"},
			{"id": "zone-ample", "name": "ample.com"}
		], `+resultInfo+`}`, 3, 3)
	})
	mux.HandleFunc("/zones/zone-example/dns_records", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A", r.URL.Query().Get("type"))
		assert.Equal(t, "home.example.com", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success": true, "errors": [], "messages": [], "result": %s, `+resultInfo+`}`, records, count, count)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestCloudflareSource(t *testing.T, url string) *CloudflareSource {
	t.Helper()
	api, err := cloudflare.NewWithAPIToken("token", cloudflare.BaseURL(url), cloudflare.UsingRetryPolicy(0, 1, 1))
	require.NoError(t, err)
	return NewCloudflareSourceWithAPI("home.example.com", 2*time.Second, api, zaptest.NewLogger(t))
}

func TestCloudflareSourceLookup(t *testing.T) {
	var zoneCalls int32
	server := cloudflareServer(t, `[{"id": "rec1", "type": "A", "name": "home.example.com", "content": "198.51.100.20"}]`, 1, &zoneCalls)
	src := newTestCloudflareSource(t, server.URL)
	assert.Equal(t, "cloudflare", src.Name())

	ip, ok := src.Lookup(context.Background())
	require.True(t, ok)
	assert.Equal(t, "198.51.100.20", ip)
	calls := atomic.LoadInt32(&zoneCalls)

	ip, ok = src.Lookup(context.Background())
	require.True(t, ok)
	assert.Equal(t, "198.51.100.20", ip)
	assert.Equal(t, "zone-example", src.zoneID)
	assert.Equal(t, calls, atomic.LoadInt32(&zoneCalls), "zone lookup is cached")
}

func TestCloudflareSourceNoRecord(t *testing.T) {
	var zoneCalls int32
	server := cloudflareServer(t, `[]`, 0, &zoneCalls)

	ip, ok := newTestCloudflareSource(t, server.URL).Lookup(context.Background())
	assert.False(t, ok)
	assert.Empty(t, ip)
}

func TestCloudflareSourceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success": false, "errors": [{"code": 9109, "message": "Invalid access token"}], "messages": [], "result": null}`))
	}))
	defer server.Close()

	ip, ok := newTestCloudflareSource(t, server.URL).Lookup(context.Background())
	assert.False(t, ok)
	assert.Empty(t, ip)
}

func TestMatchZone(t *testing.T) {
	zones := []cloudflare.Zone{
		{ID: "zone-com", Name: "com"},
		{ID: "zone-example", Name: "example.com"},
		{ID: "zone-ample", Name: "ample.com"},
		{ID: "zone-home", Name: "home.example.com"},
	}

	tests := []struct {
		hostname string
		want     string
	}{
		{"home.example.com", "zone-home"},
		{"nas.example.com", "zone-example"},
		{"Example.COM", "zone-example"},
		{"other.org", ""},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			zid, err := matchZone(tt.hostname, zones)
			if tt.want == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, zid)
		})
	}
}
