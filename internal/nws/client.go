// Package nws is the HTTP client for the National Weather Service API.
//
// Every request is a plain GET with a fixed User-Agent and
// Accept: application/json, bounded by a per-request timeout.
// Failures are never returned as Go errors: FetchJSON yields a Result
// tagged with the failure class, and callers that don't care collapse
// anything but StatusOK into "no data".
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public NWS API endpoint.
	DefaultBaseURL = "https://api.weather.gov"

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "weather-app/1.0"

	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 8 << 20
)

// Status classifies the outcome of a fetch.
type Status int

const (
	StatusOK Status = iota
	StatusTimeout
	StatusNetworkError
	StatusHTTPError
	StatusParseError
)

// String returns the label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusNetworkError:
		return "network_error"
	case StatusHTTPError:
		return "http_error"
	case StatusParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of FetchJSON.
type Result struct {
	Status     Status
	StatusCode int
	Err        error
}

// OK reports whether the response was fetched and decoded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Recorder receives one observation per completed fetch.
type Recorder interface {
	RecordFetch(ctx context.Context, status string, elapsed time.Duration)
}

// Config holds client settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns the settings for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client fetches JSON documents from the NWS API.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	group     singleflight.Group
	recorder  Recorder
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client. Zero-valued config fields take their defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      &http.Client{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AlertsURL returns the active-alerts endpoint for a region code.
// The code is passed through unvalidated.
func (c *Client) AlertsURL(region string) string {
	return c.baseURL + "/alerts/active/area/" + region
}

// PointsURL returns the grid-point metadata endpoint for a coordinate.
func (c *Client) PointsURL(lat, lon float64) string {
	return c.baseURL + "/points/" + FormatCoord(lat) + "," + FormatCoord(lon)
}

// FetchJSON GETs url and decodes the body into v.
func (c *Client) FetchJSON(ctx context.Context, url string, v any) Result {
	start := time.Now()

	// Identical in-flight GETs share one round trip; each caller decodes
	// its own copy of the body.
	ch := c.group.DoChan(url, func() (any, error) {
		return c.get(ctx, url)
	})

	var (
		body []byte
		res  Result
	)
	select {
	case r := <-ch:
		if r.Err != nil {
			res = classify(r.Err)
		} else {
			body = r.Val.([]byte)
		}
	case <-ctx.Done():
		res = classify(ctx.Err())
	}

	if res.Err == nil {
		if err := json.Unmarshal(body, v); err != nil {
			res = Result{Status: StatusParseError, Err: fmt.Errorf("decoding %s: %w", url, err)}
		}
	}

	elapsed := time.Since(start)
	if c.recorder != nil {
		c.recorder.RecordFetch(ctx, res.Status.String(), elapsed)
	}
	if res.OK() {
		c.logger.DebugContext(ctx, "nws fetch", "url", url, "status", res.Status.String(), "elapsed", elapsed)
	} else {
		c.logger.WarnContext(ctx, "nws fetch failed", "url", url, "status", res.Status.String(), "code", res.StatusCode, "error", res.Err)
	}
	return res
}

// httpStatusError carries a non-2xx status code out of get.
type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpStatusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func classify(err error) Result {
	var statusErr *httpStatusError
	switch {
	case errors.As(err, &statusErr):
		return Result{Status: StatusHTTPError, StatusCode: statusErr.code, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Status: StatusTimeout, Err: err}
	default:
		return Result{Status: StatusNetworkError, Err: err}
	}
}

// FormatCoord renders a coordinate in its shortest round-trip form,
// always with a decimal point ("40.0", "-75.25").
func FormatCoord(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
