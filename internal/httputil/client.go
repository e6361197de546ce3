// Package httputil is the JSON-over-HTTP round trip shared by the catalog
// and cart repositories. Every failure comes back as either a
// *domain.NetworkError or a *domain.ServiceError.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
)

// RequestIDHeader carries a per-call id so service logs can be correlated.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 4 << 10

// Client talks to one backend service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	service    string
	logger     logrus.FieldLogger
}

// Config configures a Client.
type Config struct {
	Service string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// New builds a Client. Timeout defaults to 10s.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := logging.OrDiscard(cfg.Logger)
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		service:    cfg.Service,
		logger:     logger.WithField("service", cfg.Service),
	}
}

// Service returns the service name used in errors and logs.
func (c *Client) Service() string { return c.service }

// Do sends body as JSON and decodes a JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	raw, err := c.DoRaw(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ServiceError{Service: c.service, Op: op, StatusCode: http.StatusOK, Body: "malformed response: " + err.Error()}
	}
	return nil
}

// DoRaw is Do without response decoding; it returns the 2xx body bytes.
func (c *Client) DoRaw(ctx context.Context, op, method, path string, query url.Values, body interface{}) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	log := c.logger.WithFields(logrus.Fields{"op": op, "method": method, "path": path, "request_id": reqID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("http client: transport failure")
		return nil, &domain.NetworkError{Service: c.service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.WithField("status", resp.StatusCode).Warn("http client: rejected")
		return nil, &domain.ServiceError{
			Service:    c.service,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("http client: read body failed")
		return nil, &domain.NetworkError{Service: c.service, Op: op, Err: err}
	}
	log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)}).Debug("http client: ok")
	return raw, nil
}
