package httphelper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/config"
	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/storage"
	"github.com/phonecore/phonecore/internal/version"
)

const (
	// DefaultTimeout bounds each request, from dispatch to the last body byte
	DefaultTimeout = 20 * time.Second

	// DefaultAcceptLanguage is sent with every request
	DefaultAcceptLanguage = "zh-CN"

	// DefaultFileFieldName is the multipart name attribute of uploaded files
	DefaultFileFieldName = "file"
)

// Method is the configured request method
type Method int

const (
	MethodGet Method = iota
	MethodPost
)

func (m Method) String() string {
	if m == MethodPost {
		return http.MethodPost
	}
	return http.MethodGet
}

// ParseMethod accepts GET or POST in any case
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", http.MethodGet:
		return MethodGet, nil
	case http.MethodPost:
		return MethodPost, nil
	default:
		return 0, NewInvalidConfigurationError(fmt.Sprintf("unsupported method %q", s))
	}
}

// State is the lifecycle position of the client's current request
type State int32

const (
	StateIdle State = iota
	StateDispatching
	StateAwaiting
	StateTimedOut
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateAwaiting:
		return "awaiting"
	case StateTimedOut:
		return "timed_out"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Client builds and executes one HTTP request at a time.
//
// Request failures are reported as error envelopes in the returned body;
// the error return is reserved for configuration mistakes detected before
// any network I/O. Calls on one Client are serialized.
type Client struct {
	// URL is the request URL without query string
	URL string

	// Method is the configured method; pending uploads force POST
	Method Method

	// Timeout bounds each request (default: 20s)
	Timeout time.Duration

	// AcceptLanguage is sent as the Accept-Language header (default: "zh-CN")
	AcceptLanguage string

	// Encoding selects the POST body format (default: EncodingURLEncoded)
	Encoding Encoding

	// FileFieldName is the multipart name attribute for uploads (default: "file")
	FileFieldName string

	// UserAgent is sent when non-empty (default: "phonecore/<version>")
	UserAgent string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Files receives downloaded files
	Files *storage.FileService

	mu     sync.Mutex
	params *Params
	state  atomic.Int32
	events notifier
}

// New creates a client with default settings and an empty URL
func New() *Client {
	return &Client{
		Method:         MethodGet,
		Timeout:        DefaultTimeout,
		AcceptLanguage: DefaultAcceptLanguage,
		Encoding:       EncodingURLEncoded,
		FileFieldName:  DefaultFileFieldName,
		UserAgent:      version.UserAgent(),
		HTTPClient:     &http.Client{},
		Files:          storage.New(""),
		params:         NewParams(),
	}
}

// NewWithURL creates a default client targeting url
func NewWithURL(url string) *Client {
	c := New()
	c.URL = url
	return c
}

// NewFromProfile creates a client from a saved request profile.
// Empty profile fields keep their defaults.
func NewFromProfile(p *config.Profile) (*Client, error) {
	c := New()
	if p == nil {
		return c, nil
	}

	c.URL = p.BaseURL
	if p.TimeoutMS > 0 {
		c.Timeout = time.Duration(p.TimeoutMS) * time.Millisecond
	}
	if p.AcceptLanguage != "" {
		c.AcceptLanguage = p.AcceptLanguage
	}
	if p.FileFieldName != "" {
		c.FileFieldName = p.FileFieldName
	}

	method, err := ParseMethod(p.Method)
	if err != nil {
		return nil, err
	}
	c.Method = method

	enc, err := ParseEncoding(p.Encoding)
	if err != nil {
		return nil, err
	}
	c.Encoding = enc

	return c, nil
}

// SetTimeout sets the request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
}

// State returns the lifecycle state of the last request
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// Subscribe registers for no-response events raised by this client.
// Call the returned function to unsubscribe; it closes the channel.
func (c *Client) Subscribe() (<-chan NoResponseEvent, func()) {
	return c.events.subscribe()
}

// AppendParameter adds a string parameter
func (c *Client) AppendParameter(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.AppendString(key, value)
}

// AppendFileParameter adds an upload. fileName is used as the multipart
// filename and must be unique. r is read but never closed.
func (c *Client) AppendFileParameter(fileName string, r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.AppendFile(fileName, r)
}

// HasUploadFile reports whether uploads are pending
func (c *Client) HasUploadFile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.HasUploads()
}

// UploadFileNames returns the pending upload names in insertion order
func (c *Client) UploadFileNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.UploadKeys()
}

// ParameterCount returns the number of pending parameters
func (c *Client) ParameterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Len()
}

// FullURL returns URL with the encoded query string appended
func (c *Client) FullURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FullURL(c.URL, c.params)
}

// Reset drops pending parameters and returns the client to idle
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Clear()
	c.setState(StateIdle)
}

// effectiveMethod applies the upload override
func (c *Client) effectiveMethod() Method {
	if c.Method == MethodGet && c.params.HasUploads() {
		logging.Warn("Pending uploads force POST",
			zap.String("url", c.URL),
			zap.Strings("uploads", c.params.UploadKeys()),
		)
		return MethodPost
	}
	return c.Method
}

// Request performs the configured request and returns the response body,
// or an error envelope when the request fails.
func (c *Client) Request(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateIdle)

	if c.effectiveMethod() == MethodGet {
		return c.get(ctx), nil
	}

	// configuration mistakes are reported before any I/O
	if err := ValidateEncoding(c.params, c.Encoding); err != nil {
		return "", err
	}
	return c.post(ctx), nil
}

// DownloadFile GETs the configured URL and stores the body at path,
// replacing any existing file. It returns false when no response arrived.
// The error is set for transport and local write failures.
func (c *Client) DownloadFile(ctx context.Context, path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateDispatching)
	fullURL := FullURL(c.URL, c.params)
	start := time.Now()

	c.setState(StateAwaiting)
	written, ok, err := awaitWithTimeout(ctx, c.Timeout, func(ctx context.Context) (int64, error) {
		req, err := c.newRequest(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return 0, err
		}
		resp, err := c.do(req)
		if err != nil {
			return 0, err
		}
		defer func() { _ = resp.Body.Close() }()

		counter := &countingReader{r: resp.Body}
		if err := c.Files.SaveStream(path, counter); err != nil {
			return counter.n, &saveError{path: path, err: err}
		}
		return counter.n, nil
	})

	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			c.noResponse(http.MethodGet, fullURL, ReasonServerError, se.code)
			return false, nil
		}
		reqErr := c.classify(err, fullURL)
		if reqErr.Type == ErrTypeTimeout {
			c.noResponse(http.MethodGet, fullURL, ReasonTimeout, 0)
			return false, nil
		}
		c.setState(StateFailed)
		logging.Error("Download failed",
			zap.String("url", fullURL),
			zap.String("path", path),
			zap.Error(err),
		)
		return false, reqErr
	}
	if !ok {
		c.noResponse(http.MethodGet, fullURL, ReasonTimeout, 0)
		return false, nil
	}

	logging.Info("Download complete",
		zap.String("url", fullURL),
		zap.String("path", path),
		zap.Int64("bytes", written),
		zap.Duration("duration", time.Since(start)),
	)
	c.params.Clear()
	c.setState(StateCompleted)
	return true, nil
}

func (c *Client) get(ctx context.Context) string {
	c.setState(StateDispatching)
	fullURL := FullURL(c.URL, c.params)

	c.setState(StateAwaiting)
	body, ok, err := awaitWithTimeout(ctx, c.Timeout, func(ctx context.Context) (string, error) {
		req, err := c.newRequest(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return "", err
		}
		return c.readAll(req)
	})
	return c.finish(http.MethodGet, fullURL, body, ok, err)
}

func (c *Client) post(ctx context.Context) string {
	c.setState(StateDispatching)
	boundary := NewBoundary()
	contentType := BodyContentType(c.Encoding, boundary)

	c.setState(StateAwaiting)
	body, ok, err := awaitWithTimeout(ctx, c.Timeout, func(ctx context.Context) (string, error) {
		pr, pw := io.Pipe()
		req, err := c.newRequest(ctx, http.MethodPost, c.URL, pr)
		if err != nil {
			_ = pr.Close()
			return "", err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		// the encoder works on a copy so it never touches c.params after we return
		params, mode, fieldName := c.params.Clone(), c.Encoding, c.FileFieldName
		written := make(chan struct{})
		go func() {
			defer close(written)
			pw.CloseWithError(EncodeBody(pw, params, mode, fieldName, boundary))
		}()
		defer func() {
			_ = pr.Close()
			select {
			case <-written:
			case <-ctx.Done():
				// a caller stream blocked in Read cannot be interrupted; the
				// encoder exits on its next write to the closed pipe
			}
		}()

		return c.readAll(req)
	})
	return c.finish(http.MethodPost, c.URL, body, ok, err)
}

// finish maps the outcome of a GET or POST onto state, events and the
// returned body. Parameters are cleared only on success, so a failed
// request can be retried as configured.
func (c *Client) finish(method, url, body string, ok bool, err error) string {
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return c.noResponse(method, url, ReasonServerError, se.code)
		}

		reqErr := c.classify(err, url)
		switch reqErr.Type {
		case ErrTypeTimeout:
			return c.noResponse(method, url, ReasonTimeout, 0)
		case ErrTypeTransport:
			c.setState(StateFailed)
			logging.Warn("Request failed",
				zap.String("method", method),
				zap.String("url", url),
				zap.String("type", reqErr.Type.String()),
				zap.Error(err),
			)
			return NetworkEnvelope(err)
		default:
			c.setState(StateFailed)
			logging.Error("Request failed unexpectedly",
				zap.String("method", method),
				zap.String("url", url),
				zap.Error(err),
			)
			return UnknownEnvelope(err)
		}
	}
	if !ok {
		return c.noResponse(method, url, ReasonTimeout, 0)
	}

	c.params.Clear()
	c.setState(StateCompleted)
	return body
}

func (c *Client) noResponse(method, url string, reason NoResponseReason, status int) string {
	c.setState(StateTimedOut)
	logging.Warn("Server did not respond",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("reason", reason.String()),
		zap.Int("status_code", status),
		zap.Duration("timeout", c.Timeout),
	)
	c.events.publish(NoResponseEvent{
		URL:        url,
		Method:     method,
		Reason:     reason,
		StatusCode: status,
		Timeout:    c.Timeout,
		At:         time.Now(),
	})
	return NoResponseEnvelope()
}

// classify separates request construction mistakes, which are never
// network failures, from transport errors.
func (c *Client) classify(err error, url string) *RequestError {
	var be *buildError
	if errors.As(err, &be) {
		return &RequestError{Type: ErrTypeUnknown, Message: "invalid request", Err: err, URL: url}
	}
	var se *saveError
	if errors.As(err, &se) {
		return &RequestError{Type: ErrTypeUnknown, Message: "failed to save download", Err: err, URL: url}
	}
	return ClassifyTransportError(err, url)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &buildError{err: err}
	}
	req.Header.Set("Accept-Language", c.AcceptLanguage)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	logging.LogHTTPRequest(req.Method, req.URL.String(), flattenHeader(req.Header))

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Body.Close()
		return nil, &statusError{code: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) readAll(req *http.Request) (string, error) {
	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	logging.LogHTTPResponse(req.URL.String(), resp.StatusCode, len(data), time.Since(start))
	logging.LogRawBytes("Response body", data)
	return string(data), nil
}

func flattenHeader(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for k, v := range h {
		flat[k] = strings.Join(v, ", ")
	}
	return flat
}

// statusError marks a response whose status means the server failed us
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server responded with status %d", e.code)
}

// buildError marks a failure to construct the request itself
type buildError struct {
	err error
}

func (e *buildError) Error() string { return e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

type saveError struct {
	path string
	err  error
}

func (e *saveError) Error() string { return fmt.Sprintf("failed to save %s: %v", e.path, e.err) }
func (e *saveError) Unwrap() error { return e.err }

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
