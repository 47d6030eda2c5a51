package fmi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
	"github.com/couchcryptid/dose-rate-exporter/internal/observability"
)

// Client downloads dose rate datasets from the FMI open data WFS service.
// It implements pipeline.Fetcher.
type Client struct {
	httpClient   *http.Client
	url          string
	maxBodyBytes int64
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates a WFS client. params are appended to the query string of
// rawURL, overriding keys already present.
func NewClient(rawURL string, params url.Values, timeout time.Duration, maxBodyBytes int64, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse FMI url: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:          u.String(),
		maxBodyBytes: maxBodyBytes,
		metrics:      metrics,
		logger:       logger,
	}, nil
}

// URL returns the request URL including stored query parameters.
func (c *Client) URL() string { return c.url }

// Fetch performs one GET against the stored query and returns the raw body.
// Every failure wraps domain.ErrDownload.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrDownload, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	// Setting Accept-Encoding ourselves turns off the transport's transparent
	// decompression, so gzip bodies are decoded below.
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: wfs request: %w", domain.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: FMI API error: status %d: %s", domain.ErrDownload, resp.StatusCode, body)
	}

	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip body: %w", domain.ErrDownload, err)
		}
		defer zr.Close()
		r = zr
	}

	// The limit applies to the decoded document.
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrDownload, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrDownload, c.maxBodyBytes)
	}

	c.logger.Debug("dataset downloaded", "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
