// Package health pings the backend health endpoint and serves this server's
// own liveness and readiness probes.
package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joestump/journey-web/internal/metrics"
	"go.uber.org/zap"
)

// DefaultURL is the backend health endpoint.
const DefaultURL = "http://localhost:8000/healthz"

// Client issues GET requests to the backend health endpoint. It has no
// timeout and never retries; a check ends when the backend answers or the
// context is cancelled.
type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Client for url. A nil hc uses a client without timeout.
func NewClient(url string, hc *http.Client, logger *zap.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: url, http: hc, logger: logger}
}

// URL returns the endpoint this client checks.
func (c *Client) URL() string { return c.url }

// Check sends the request with the visitor's cookies attached and logs the
// response. The status code is not validated.
func (c *Client) Check(ctx context.Context, cookies []*http.Cookie) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		metrics.HealthChecksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build health request: %w", err)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			metrics.HealthChecksTotal.WithLabelValues("canceled").Inc()
		} else {
			metrics.HealthChecksTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("get %s: %w", c.url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	elapsed := time.Since(start)
	metrics.HealthChecksTotal.WithLabelValues("ok").Inc()
	metrics.HealthCheckDuration.Observe(elapsed.Seconds())
	c.logger.Info("backend health",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))
	return nil
}
