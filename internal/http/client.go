// Package http is the transport used by the resource clients: one GET per call
// over go-retryablehttp, with optional retries, debug logging and interceptors.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/aot/internal/constants"
	"github.com/fivetwenty-io/aot/pkg/aot"
)

// Logger is the logging interface used by the transport. aot.Logger satisfies it.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes a single HTTP call.
type Request struct {
	Method string
	// URL is either a path relative to the client's base URL or an absolute URL.
	URL string
	// Filters, when non-nil, replace the query component of URL.
	Filters *aot.FilterSet
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	URL        string
}

// Client performs requests against a base URL.
type Client struct {
	baseURL      string
	retryClient  *retryablehttp.Client
	logger       Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	httpClient   *http.Client
	interceptors *aot.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response through the logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds each request. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig enables retries on 429, 5xx and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithInterceptors adds a caller supplied interceptor chain.
func WithInterceptors(chain *aot.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport for baseURL. By default a request is attempted
// exactly once.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		userAgent:    constants.DefaultUserAgent,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.retryMax > 0 && client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	if client.httpClient != nil {
		// Copy so the timeout does not leak into the caller's client.
		httpClient := *client.httpClient
		retryClient.HTTPClient = &httpClient
	}

	if client.timeout > 0 {
		retryClient.HTTPClient.Timeout = client.timeout
	}

	client.retryClient = retryClient

	return client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET for path (relative or absolute) with optional filters.
func (c *Client) Get(ctx context.Context, path string, filters *aot.FilterSet) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     path,
		Filters: filters,
	})
}

// Do executes req. A non-2xx status is returned as *aot.HTTPError together
// with the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.ResolveURL(req.URL, req.Filters)
	if err != nil {
		return nil, err
	}

	intercepted := &aot.Request{
		Method:   method,
		URL:      target.String(),
		Headers:  make(http.Header),
		Metadata: map[string]interface{}{"path": target.Path},
	}

	intercepted.Headers.Set("Accept", "application/json")
	intercepted.Headers.Set("User-Agent", c.userAgent)

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	chain := c.chain()

	err = chain.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, intercepted.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = intercepted.Headers

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		resp := &aot.Response{Error: err}
		_ = chain.ExecuteResponseInterceptors(ctx, intercepted, resp)

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		URL:        intercepted.URL,
	}

	var statusErr error
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		statusErr = &aot.HTTPError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			URL:        intercepted.URL,
			Body:       body,
		}
	}

	err = chain.ExecuteResponseInterceptors(ctx, intercepted, &aot.Response{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       body,
		Error:      statusErr,
	})
	if err != nil {
		return response, err
	}

	if statusErr != nil {
		return response, statusErr
	}

	return response, nil
}

// ResolveURL joins a relative path onto the base URL, or parses an absolute
// URL as is. Filters, when non-nil, replace the query component.
func (c *Client) ResolveURL(path string, filters *aot.FilterSet) (*url.URL, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + path
	}

	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing request URL %q: %w", raw, err)
	}

	if filters != nil {
		target.RawQuery = filters.Encode()
	}

	return target, nil
}

func (c *Client) chain() *aot.InterceptorChain {
	chain := aot.NewInterceptorChain()

	if c.debug && c.logger != nil {
		chain.AddRequestInterceptor(aot.LoggingInterceptor(c.logger))
		chain.AddResponseInterceptor(aot.LoggingResponseInterceptor(c.logger))
	}

	if c.interceptors != nil {
		chain.AddRequestInterceptor(c.interceptors.ExecuteRequestInterceptors)
		chain.AddResponseInterceptor(c.interceptors.ExecuteResponseInterceptors)
	}

	return chain
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		out[key] = keysAndValues[i+1]
	}

	return out
}
