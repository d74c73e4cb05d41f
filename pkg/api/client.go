package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Client talks to the Knaxim REST API. Cookies set by the server (the
// session) are kept in a jar and sent with every request.
type Client struct {
	httpclient *http.Client
	base       string
}

type Option func(*Client)

// WithHTTPClient replaces the transport client. A client without a jar gets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpclient = hc
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	c := &Client{
		httpclient: &http.Client{},
		base:       strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpclient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpclient.Jar = jar
	}
	return c, nil
}

// URL resolves path against the base url.
func (c *Client) URL(path ...string) string {
	segs := make([]string, 0, len(path)+1)
	segs = append(segs, c.base)
	for _, p := range path {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.URL(path), nil)
}

// Query issues a GET with params encoded into the query string.
func (c *Client) Query(ctx context.Context, path string, params Form) (*Response, error) {
	u := c.URL(path)
	if q := params.Values().Encode(); q != "" {
		u += "?" + q
	}
	return c.do(ctx, http.MethodGet, u, nil)
}

func (c *Client) Post(ctx context.Context, path string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodPost, c.URL(path), body)
}

func (c *Client) Put(ctx context.Context, path string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodPut, c.URL(path), body)
}

func (c *Client) Delete(ctx context.Context, path string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.URL(path), body)
}

func (c *Client) do(ctx context.Context, method, u string, body Body) (*Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		r, ct, err := body.encode()
		if err != nil {
			return nil, err
		}
		reader, contentType = r, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: cannot read response: %w", method, u, err)
	}

	r := newResponse(resp, raw)
	if StatusCodeRangeOf(r.Status) != Status2xx {
		return r, newStatusError(r)
	}
	return r, nil
}
