// Package redfish provides a client for the Redfish management API exposed
// by server BMCs, including the vendor-specific corners the standard leaves
// open (proprietary virtual-media paths, divergent boot-override handling).
package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultMaxRetries is the number of extra attempts after the first.
	DefaultMaxRetries = 3
	// DefaultRetryBase is the initial backoff; it doubles per retry
	// (2s, 4s, 8s with the defaults).
	DefaultRetryBase = 2 * time.Second

	defaultTimeout = 10 * time.Second

	serviceRoot = "/redfish/v1"
	systemPath  = serviceRoot + "/Systems/1"
	managerPath = serviceRoot + "/Managers/1"
	chassisPath = serviceRoot + "/Chassis/1"
)

// Config carries the per-client connection and retry settings. Retry policy
// is explicit here rather than a package global so it stays unit-testable.
type Config struct {
	Host     string
	Username string
	Password string

	// Timeout bounds one attempt, not the whole retry sequence.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after the first. Zero
	// means a single attempt; negative values are clamped to zero.
	// Callers wanting the stock policy pass DefaultMaxRetries.
	MaxRetries int
	// RetryBase is the initial backoff between attempts.
	RetryBase time.Duration
}

// Client talks to one BMC. It is stateless across calls apart from the
// precomputed auth header and its TLS transport; BMCs ship self-signed
// certificates, so verification is disabled.
type Client struct {
	host       string
	baseURL    string
	username   string
	password   string
	authHeader string
	http       *http.Client
	maxRetries int
	retryBase  time.Duration
}

// Response is the outcome of a successful request. A 2xx response with an
// empty body is reported as a synthesized success envelope so callers never
// have to disambiguate "no body" from "no data".
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// NewClient creates a client bound to one BMC host.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = DefaultRetryBase
	}

	auth := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))

	return &Client{
		host:       cfg.Host,
		baseURL:    "https://" + cfg.Host,
		username:   cfg.Username,
		password:   cfg.Password,
		authHeader: "Basic " + auth,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // BMCs use self-signed certs
				},
			},
		},
	}
}

// Host returns the BMC host this client is bound to.
func (c *Client) Host() string {
	return c.host
}

// Do performs method on path with the retry policy applied: transient
// failures (5xx, transport errors) are retried with doubling backoff up to
// the configured budget, everything else fails on the first attempt. When
// the budget is exhausted only the last observed failure is returned.
func (c *Client) Do(ctx context.Context, method, path string, body any, raw bool) (*Response, error) {
	var out *Response
	err := retry.Do(
		func() error {
			resp, err := c.request(ctx, method, path, body, raw, "")
			if err != nil {
				return err
			}
			out = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryBase),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rerr *Error
			return errors.As(err, &rerr) && rerr.Retryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Str("host", c.host).Str("path", path).Uint("attempt", n+1).Err(err).
				Msg("retrying BMC request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// request performs exactly one exchange and classifies the outcome.
func (c *Client) request(ctx context.Context, method, path string, body any, raw bool, token string) (*Response, error) {
	var payload io.Reader
	if body != nil {
		if b, ok := body.([]byte); ok {
			payload = bytes.NewReader(b)
		} else {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			payload = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	} else {
		req.Header.Set("Authorization", c.authHeader)
	}
	if body != nil && !raw {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Path: path, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(data)) == 0 {
			data = fmt.Appendf(nil, `{"Success":true,"Status":%d}`, resp.StatusCode)
		}
		return &Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: data}, nil
	}

	return nil, &Error{
		Kind:    classify(resp.StatusCode),
		Status:  resp.StatusCode,
		Path:    path,
		Message: summarize(data),
	}
}

// summarize trims an error body down to something loggable.
func summarize(body []byte) string {
	s := string(bytes.TrimSpace(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Get fetches a resource.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, false)
}

// Post sends body to an action or collection target.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, false)
}

// Patch updates fields on a resource.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, false)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, false)
}

// odataRef is a reference to another resource.
type odataRef struct {
	ID string `json:"@odata.id"`
}

// collection is the common Members envelope of Redfish collections.
type collection struct {
	Members []odataRef `json:"Members"`
}

// members lists the resource paths in a collection.
func (c *Client) members(ctx context.Context, path string) ([]string, error) {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var col collection
	if err := resp.Decode(&col); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(col.Members))
	for _, m := range col.Members {
		if m.ID != "" {
			paths = append(paths, m.ID)
		}
	}
	return paths, nil
}
