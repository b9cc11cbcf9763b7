package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votecheck/pkg/requestcontext"
	"votecheck/pkg/testutil"
)

func TestResolver_ClientIP(t *testing.T) {
	resolver, err := NewResolver([]string{"10.0.0.0/8", "192.0.2.254"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain via trusted proxy", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:443", "203.0.113.5"},
		{"client cannot prepend past the first untrusted hop", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.5"}, "10.0.0.2:443", "203.0.113.5"},
		{"single forwarded", map[string]string{"X-Forwarded-For": " 203.0.113.6 "}, "10.0.0.2:443", "203.0.113.6"},
		{"bare trusted address", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.254:443", "203.0.113.7"},
		{"real ip via trusted proxy", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:443", "198.51.100.4"},
		{"garbage hop falls back to peer", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2:443", "10.0.0.2"},
		{"untrusted peer ignores forwarded", map[string]string{"X-Forwarded-For": "198.51.100.9"}, "203.0.113.7:5555", "203.0.113.7"},
		{"untrusted peer ignores real ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "203.0.113.7:5555", "203.0.113.7"},
		{"remote addr", nil, "192.0.2.10:52000", "192.0.2.10"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:52000", "2001:db8::1"},
		{"no port", nil, "192.0.2.11", "192.0.2.11"},
		{"empty", nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, resolver.ClientIP(req))
		})
	}
}

func TestNewResolver_RejectsMalformedEntries(t *testing.T) {
	_, err := NewResolver([]string{"10.0.0.0/33"})
	require.Error(t, err)

	_, err = NewResolver([]string{"proxy.internal"})
	require.Error(t, err)

	r, err := NewResolver([]string{"", " "})
	require.NoError(t, err)
	assert.Empty(t, r.trusted)
}

func TestClientMetadata(t *testing.T) {
	capture := &testutil.CaptureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:52000"
	req.Header.Set("User-Agent", "curl/8.5")

	testutil.DoRequest(ClientMetadata(capture), req)

	assert.Equal(t, "192.0.2.10", requestcontext.ClientIP(capture.Request.Context()))
	assert.Equal(t, "curl/8.5", requestcontext.UserAgent(capture.Request.Context()))
}

func TestClientMetadata_IgnoresForwardingHeadersByDefault(t *testing.T) {
	capture := &testutil.CaptureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("X-Real-IP", "10.0.0.2")

	testutil.DoRequest(ClientMetadata(capture), req)

	assert.Equal(t, "203.0.113.7", requestcontext.ClientIP(capture.Request.Context()))
}
