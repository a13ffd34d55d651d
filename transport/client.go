// Package transport performs request/response exchanges against the Trekker API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	RequestIDHeader   = "X-Request-ID"
	ContentTypeHeader = "Content-Type"
	jsonContentType   = "application/json"
	defaultTimeout    = 30 * time.Second
)

// Doer is the request surface used by the session manager and the resource wrappers.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, result any) error
	Post(ctx context.Context, path string, body, result any, opts ...RequestOption) error
	Put(ctx context.Context, path string, body, result any, opts ...RequestOption) error
	Delete(ctx context.Context, path string, result any) error
}

// TokenSource yields the access token to attach to outgoing requests.
// A nil token with a nil error means the request is sent without credentials.
type TokenSource interface {
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// Client is the net/http implementation of Doer.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
}

var _ Doer = (*Client)(nil)

// ClientOption modifies a Client at construction time.
type ClientOption func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenSource makes the client attach a bearer token whenever one is available.
func WithTokenSource(tokens TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client rooted at baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "[transport.New] url.Parse")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[transport.New] base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "transport").Str("base_url", u.String()).Logger()
	return c, nil
}

// BaseURL returns the root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result, nil)
}

func (c *Client) Post(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result, opts)
}

func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, result, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any, opts []RequestOption) error {
	ro := newRequestOptions(opts)

	req, err := c.newRequest(ctx, method, path, query, body, ro)
	if errors.Is(err, ErrInvalidPath) {
		return errors.Wrapf(err, "[Client.do] %s", method)
	}
	if err != nil {
		return &RemoteServiceError{Method: method, Path: path, Err: err}
	}

	requestID := req.Header.Get(RequestIDHeader)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return &RemoteServiceError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteServiceError{Method: method, Path: path, Err: errors.Wrap(err, "read body")}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("exchange")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteServiceError{Method: method, Path: path, Status: resp.StatusCode, Body: data}
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return &RemoteServiceError{Method: method, Path: path, Err: errors.Wrap(err, "decode body")}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, ro requestOptions) (*http.Request, error) {
	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	if ro.contentType != "" {
		contentType = ro.contentType
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	req.Header.Set("Accept", jsonContentType)
	req.Header.Set(RequestIDHeader, uuid.New().String())
	if contentType != "" {
		req.Header.Set(ContentTypeHeader, contentType)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	if c.tokens != nil {
		tok, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "access token")
		}
		if tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}
	return req, nil
}

// resolve joins path onto the base URL, keeping the trailing slash the API routes expect.
// path is taken as already escaped, so segments built with url.PathEscape keep
// their encoded slashes. Dot segments are refused: a path never leaves the base.
func (c *Client) resolve(path string) (*url.URL, error) {
	path = strings.Trim(path, "/")
	for _, segment := range strings.Split(path, "/") {
		decoded, err := url.PathUnescape(segment)
		if err != nil || decoded == "." || decoded == ".." {
			return nil, errors.Wrapf(ErrInvalidPath, "%q", path)
		}
	}
	if path != "" {
		path += "/"
	}

	ref, err := url.Parse("./" + path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPath, "%q: %v", path, err)
	}
	if ref.RawQuery != "" || ref.Fragment != "" {
		return nil, errors.Wrapf(ErrInvalidPath, "%q carries a query or fragment", path)
	}
	return c.baseURL.ResolveReference(ref), nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "", nil
	case []byte:
		return bytes.NewReader(b), jsonContentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", errors.Wrap(err, "encode body")
		}
		return bytes.NewReader(data), jsonContentType, nil
	}
}
