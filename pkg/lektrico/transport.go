package lektrico

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lektrico/lektrico-go/pkg/common"
	"github.com/lektrico/lektrico-go/pkg/log"
)

// DefaultTimeout bounds every round trip unless overridden with WithTimeout.
const DefaultTimeout = 8 * time.Second

// Transport issues a single request to a device and returns the decoded JSON
// body. Implementations must classify failures as *ConnectionError or
// *ProtocolError.
type Transport interface {
	Invoke(ctx context.Context, method, path string, body any) (json.RawMessage, error)
	Close() error
}

// HTTPTransport talks to a device over plain HTTP. It is safe for concurrent
// use and does not serialize requests.
type HTTPTransport struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	metrics *Metrics

	mu     sync.Mutex
	client *http.Client
	owned  bool
}

func newHTTPTransport(host string, o options) (*HTTPTransport, error) {
	baseURL, err := deviceURL(host)
	if err != nil {
		return nil, err
	}
	return &HTTPTransport{
		baseURL: baseURL,
		timeout: o.timeout,
		limiter: o.limiter,
		metrics: o.metrics,
		client:  o.client,
	}, nil
}

// deviceURL accepts a bare host, host:port or a full http URL.
func deviceURL(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", validationErrorf("host", "host is required")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", validationErrorf("host", "%v", err)
	}
	if u.Host == "" {
		return "", validationErrorf("host", "no host in %q", host)
	}
	return u.Scheme + "://" + u.Host, nil
}

// httpClient returns the caller's client or lazily creates one the transport
// owns.
func (t *HTTPTransport) httpClient() *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		t.client = common.HTTPClient(t.timeout)
		t.owned = true
	}
	return t.client
}

// Close releases the http client if the transport created it. A client passed
// in with WithHTTPClient is left alone. Close may be called more than once.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owned && t.client != nil {
		common.CloseIdleConnections(t.client)
		t.client = nil
		t.owned = false
	}
	return nil
}

// Invoke performs one round trip bounded by the configured timeout.
func (t *HTTPTransport) Invoke(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	res, err := t.invoke(ctx, method, path, body)
	t.metrics.observe(path, err, time.Since(start))
	return res, err
}

func (t *HTTPTransport) invoke(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, &ConnectionError{Reason: "communication failure", Err: err}
			}
			// Wait fails early when the deadline cannot be met
			return nil, &ConnectionError{Reason: "timeout", Err: err}
		}
	}

	req, err := t.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).DebugContext(ctx, "lektrico request", slog.String("method", method), slog.String("url", req.URL.String()))

	resp, err := t.httpClient().Do(req)
	if err != nil {
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &ConnectionError{Reason: "unexpected status", StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		log.Ctx(ctx).ErrorContext(ctx, "unexpected response from lektrico device", slog.String("contentType", contentType), slog.String("body", string(b)))
		return nil, &ProtocolError{
			Reason:      "unexpected response",
			ContentType: contentType,
			Body:        string(b),
		}
	}
	if !json.Valid(b) {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode lektrico response", slog.String("body", string(b)))
		return nil, &ProtocolError{
			Reason:      "invalid json",
			ContentType: contentType,
			Body:        string(b),
		}
	}

	return json.RawMessage(b), nil
}

func (t *HTTPTransport) newRequest(ctx context.Context, method, endpoint string, data any) (*http.Request, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, validationErrorf("host", "%v", err)
	}
	u.Path, err = url.JoinPath(u.Path, endpoint)
	if err != nil {
		return nil, validationErrorf("path", "%v", err)
	}

	switch method {
	case http.MethodGet:
		req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
		if err != nil {
			return nil, validationErrorf("request", "%v", err)
		}
		return req, nil
	case http.MethodPost:
		var body io.Reader = http.NoBody
		if data != nil {
			b, err := json.Marshal(data)
			if err != nil {
				return nil, validationErrorf("body", "%v", err)
			}
			body = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
		if err != nil {
			return nil, validationErrorf("request", "%v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	default:
		return nil, validationErrorf("method", "unsupported http method %q", method)
	}
}

func connectionError(err error) *ConnectionError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &ConnectionError{Reason: "timeout", Err: err}
	}
	return &ConnectionError{Reason: "communication failure", Err: err}
}
