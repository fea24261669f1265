package common

import (
	_ "embed"
	"net/http"
	"strings"
	"time"
)

//go:embed VERSION
var version string

// Version returns the library version embedded at build time.
func Version() string {
	return strings.TrimSpace(version)
}

// UserAgent is sent with every request to a device.
func UserAgent() string {
	return "lektrico-go/" + Version()
}

type userAgentTransport struct {
	transport http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper and stamps the User-Agent header.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// the device firmware keeps no per-client state so a clone is enough to
	// avoid mutating a request the caller may reuse
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.transport.RoundTrip(req)
}

// HTTPClient returns an http client with a default user-agent set. The
// transport is cloned so closing idle connections on one client never affects
// another.
func HTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Transport: &userAgentTransport{
			transport: transport,
			userAgent: UserAgent(),
		},
		Timeout: timeout,
	}
}

// CloseIdleConnections releases pooled connections held by c, including when
// its transport is wrapped by HTTPClient.
func CloseIdleConnections(c *http.Client) {
	if c == nil {
		return
	}
	if t, ok := c.Transport.(*userAgentTransport); ok {
		if ci, ok := t.transport.(interface{ CloseIdleConnections() }); ok {
			ci.CloseIdleConnections()
		}
		return
	}
	c.CloseIdleConnections()
}
