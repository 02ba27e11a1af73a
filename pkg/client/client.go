// Package client provides the single HTTP-calling routine shared by every
// command, in single-item and batch mode alike.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/pkg/config"
	"github.com/Sternrassler/scrapingbee-cli/pkg/logging"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrapingbee_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrapingbee_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 150},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrapingbee_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// Response is a completed HTTP exchange, whatever its status.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Doer performs one request. *Client implements it; wrappers such as the
// response cache implement it too.
type Doer interface {
	Do(ctx context.Context, d request.Descriptor) (*Response, error)
}

// Client talks to the ScrapingBee API.
type Client struct {
	httpClient *http.Client
	config     config.Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("client"),
	}, nil
}

// Do performs exactly one HTTP request for the descriptor.
// Any HTTP status is returned as a Response; only failures to obtain a
// response at all are returned as errors (*TransportError).
func (c *Client) Do(ctx context.Context, d request.Descriptor) (*Response, error) {
	endpoint := string(d.Kind)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := c.newRequest(ctx, d)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read response body: %w", err)}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if class := ClassifyStatus(resp.StatusCode); class != "" {
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("API returned error status")
	} else {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Dur("duration", time.Since(startTime)).
			Msg("API request complete")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header.Clone(),
	}, nil
}

func (c *Client) newRequest(ctx context.Context, d request.Descriptor) (*http.Request, error) {
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if d.Body != "" {
		body = bytes.NewBufferString(d.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint(d.Path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	for k, vs := range d.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.config.APIKey)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", c.config.UserAgent)
	if d.ContentType != "" {
		req.Header.Set("Content-Type", d.ContentType)
	}
	return req, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
