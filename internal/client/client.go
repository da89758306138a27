package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds every request made to the charger.
const DefaultRequestTimeout = 10 * time.Second

// ChargerClient defines the interface for talking to a charger's local HTTP API.
type ChargerClient interface {
	GetStatus(ctx context.Context) (map[string]any, error)
	GetPower(ctx context.Context) (map[string]any, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	BaseURL() string
	Close()
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	Host           string
	Username       string
	Password       string
	RequestTimeout time.Duration
}

// DefaultClient implements ChargerClient using the standard net/http package.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	baseURL string
}

// NewDefaultClient constructs a DefaultClient from the given config.
// Returns an error if Host is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	host := strings.TrimSuffix(strings.TrimPrefix(cfg.Host, "http://"), "/")
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// The charger's embedded server handles very few parallel connections.
	transport.MaxConnsPerHost = 2
	transport.MaxIdleConnsPerHost = 1

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		baseURL: "http://" + host,
	}, nil
}

// BaseURL returns the charger's base URL, e.g. "http://192.168.1.40".
func (c *DefaultClient) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the underlying transport.
func (c *DefaultClient) Close() {
	c.http.CloseIdleConnections()
}

// doGet performs a GET request to http://<host>/<endpoint> with Basic Auth.
// Transport failures come back as *ConnectError, HTTP 401 as *AuthError and
// any other non-2xx status as *ProtocolError.
func (c *DefaultClient) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	url := c.baseURL + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")

	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	const maxResponseBytes = 1 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProtocolError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
