package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/notewire/notewire/resilience"
)

// Client is an HTTP client with authentication, retry, and status
// classification. Provider adapters share a single Client per upstream.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid httpclient config: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}, nil
}

// Do executes the request. When retry is configured, retryable failures
// (connection errors, timeouts, 429, 5xx) are retried with backoff.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.config.Retry != nil {
		return resilience.Retry(ctx, *c.config.Retry, func() (*Response, error) {
			return c.doOnce(ctx, req)
		})
	}
	return c.doOnce(ctx, req)
}

// Get is shorthand for a GET request to path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path})
}

// PostJSON is shorthand for a POST request with a JSON-encoded body.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) doOnce(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.executeRequest(ctx, httpReq)
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u, err := c.resolveURL(req.Path)
	if err != nil {
		return nil, err
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := req.Auth
	if auth == nil {
		auth = c.config.Auth
	}
	if auth != nil {
		auth.apply(httpReq)
	}

	return httpReq, nil
}

func (c *Client) resolveURL(path string) (*url.URL, error) {
	if c.config.BaseURL == "" {
		return url.Parse(path)
	}
	base := strings.TrimSuffix(c.config.BaseURL, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return url.Parse(base + path)
}

func (c *Client) executeRequest(ctx context.Context, httpReq *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(ctx.Err())
		}
		return nil, NewConnectionError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, ClassifyStatusCode(resp.StatusCode, body)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}

// encodeBody converts the request body to an io.Reader plus the
// content type to set when the caller has not set one.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "", nil
	case *MultipartBody:
		return v.encode()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
