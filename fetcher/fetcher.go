// Package fetcher retrieves the raw HTML of a page, either through a
// pass-through proxy that wraps the body in a JSON envelope or directly.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	DefaultProxyURL     = "https://api.allorigins.win/get"
	DefaultUserAgent    = "MetaSight/1.0"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Page is the raw HTML of a fetched page and the absolute URL it was fetched from
type Page struct {
	URL  string
	HTML string
}

// Options configures a Client
type Options struct {
	// ProxyURL is the pass-through service endpoint; the target is sent as ?url=
	ProxyURL string
	// Direct fetches the page itself instead of going through the proxy
	Direct bool

	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// Client fetches page HTML
type Client struct {
	client       *http.Client
	proxyURL     string
	direct       bool
	userAgent    string
	maxBodyBytes int64
}

// proxyEnvelope is the JSON body returned by the pass-through proxy
type proxyEnvelope struct {
	Contents *string `json:"contents"`
	Status   struct {
		URL         string `json:"url"`
		HTTPCode    int    `json:"http_code"`
		ContentType string `json:"content_type"`
	} `json:"status"`
}

// New creates a Client, filling unset options with defaults
func New(opts Options) *Client {
	if opts.ProxyURL == "" {
		opts.ProxyURL = DefaultProxyURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		proxyURL:     opts.ProxyURL,
		direct:       opts.Direct,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// NormalizeURL turns user input into an absolute http(s) URL, prefixing
// https:// when no scheme is given.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Input: raw, Message: "url is empty"}
	}

	if !schemePattern.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &ValidationError{Input: raw, Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &ValidationError{Input: raw, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return "", &ValidationError{Input: raw, Message: "missing host"}
	}

	return trimmed, nil
}

// Fetch normalizes rawURL and returns the page HTML
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	var body string
	if c.direct {
		body, err = c.fetchDirect(ctx, target)
	} else {
		body, err = c.fetchViaProxy(ctx, target)
	}
	if err != nil {
		return nil, err
	}

	return &Page{URL: target, HTML: body}, nil
}

func (c *Client) fetchViaProxy(ctx context.Context, target string) (string, error) {
	endpoint, err := url.Parse(c.proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}
	query := endpoint.Query()
	query.Set("url", target)
	endpoint.RawQuery = query.Encode()

	resp, err := c.get(ctx, endpoint.String())
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	var envelope proxyEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.envelopeLimit())).Decode(&envelope); err != nil {
		return "", &FetchError{URL: target, Err: fmt.Errorf("decode proxy response: %w", err)}
	}
	if envelope.Contents == nil || *envelope.Contents == "" {
		return "", ErrNoContent
	}

	return *envelope.Contents, nil
}

func (c *Client) fetchDirect(ctx context.Context, target string) (string, error) {
	resp, err := c.get(ctx, target)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, c.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: target, Err: fmt.Errorf("detect charset: %w", err)}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	if len(data) == 0 {
		return "", ErrNoContent
	}

	return string(data), nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.client.Do(req)
}

// envelopeLimit leaves room for JSON escaping of a body at the size cap
func (c *Client) envelopeLimit() int64 {
	return c.maxBodyBytes*2 + 64*1024
}
