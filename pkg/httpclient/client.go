package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"zhipan/pkg/circuitbreaker"
)

// StatusError is returned by Do when the breaker is configured and the server
// answers with a 5xx status. It lets callers tell an application-level failure
// apart from a transport failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: received status code %d", e.Code)
}

// Client is a thin wrapper around the standard http.Client with optional
// circuit breaker protection for outbound calls.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// Options configures a Client.
type Options struct {
	ConnectTimeout time.Duration // TCP connect timeout
	ReadTimeout    time.Duration // full round-trip timeout
	Breaker        circuitbreaker.CircuitBreaker
}

// New creates a Client with the given timeouts. Breaker may be nil, in which
// case requests pass through unprotected.
func New(opts Options) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.ReadTimeout,
			Transport: transport,
		},
		breaker: opts.Breaker,
	}
}

// Do executes an HTTP request. When a breaker is configured, status codes
// >= 500 count as failures toward tripping the circuit and surface as
// *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// Drain so the failed call does not leak the connection.
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*http.Response), nil
}
