package doerfake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
)

var _ transport.Doer = (*FakeDoer)(nil)

// Call is one recorded request.
type Call struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	Headers     map[string]string
}

type reply struct {
	body string
	err  error
}

// FakeDoer replays scripted replies keyed by "METHOD path" and records every call.
// Unscripted requests fail with a 404 RemoteServiceError.
type FakeDoer struct {
	replies map[string]reply
	calls   []Call
	lock    sync.Mutex
}

func NewFakeDoer() *FakeDoer {
	return &FakeDoer{
		replies: make(map[string]reply),
	}
}

// Reply scripts a JSON body for method and path.
func (d *FakeDoer) Reply(method, path, body string) *FakeDoer {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.replies[key(method, path)] = reply{body: body}
	return d
}

// Fail scripts an error for method and path.
func (d *FakeDoer) Fail(method, path string, err error) *FakeDoer {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.replies[key(method, path)] = reply{err: err}
	return d
}

// FailStatus scripts a RemoteServiceError with the given status.
func (d *FakeDoer) FailStatus(method, path string, status int, body string) *FakeDoer {
	return d.Fail(method, path, &transport.RemoteServiceError{
		Method: method,
		Path:   path,
		Status: status,
		Body:   []byte(body),
	})
}

// Calls returns a copy of the recorded calls.
func (d *FakeDoer) Calls() []Call {
	d.lock.Lock()
	defer d.lock.Unlock()
	calls := make([]Call, len(d.calls))
	copy(calls, d.calls)
	return calls
}

// LastCall returns the most recent call, or false if none was made.
func (d *FakeDoer) LastCall() (Call, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.calls) == 0 {
		return Call{}, false
	}
	return d.calls[len(d.calls)-1], true
}

func (d *FakeDoer) Get(ctx context.Context, path string, query url.Values, result any) error {
	return d.do(http.MethodGet, path, query, nil, result, nil)
}

func (d *FakeDoer) Post(ctx context.Context, path string, body, result any, opts ...transport.RequestOption) error {
	return d.do(http.MethodPost, path, nil, body, result, opts)
}

func (d *FakeDoer) Put(ctx context.Context, path string, body, result any, opts ...transport.RequestOption) error {
	return d.do(http.MethodPut, path, nil, body, result, opts)
}

func (d *FakeDoer) Delete(ctx context.Context, path string, result any) error {
	return d.do(http.MethodDelete, path, nil, nil, result, nil)
}

func (d *FakeDoer) do(method, path string, query url.Values, body, result any, opts []transport.RequestOption) error {
	call := Call{Method: method, Path: normalize(path), Query: query, Body: body}
	call.ContentType, call.Headers = transport.ApplyRequestOptions(opts...)
	if r, ok := body.(io.Reader); ok {
		raw, err := io.ReadAll(r)
		if err != nil {
			return errors.Wrap(err, "[FakeDoer.do] read body")
		}
		call.RawBody = raw
		call.Body = nil
	}

	d.lock.Lock()
	d.calls = append(d.calls, call)
	rep, ok := d.replies[key(method, path)]
	d.lock.Unlock()

	if !ok {
		return &transport.RemoteServiceError{Method: method, Path: path, Status: http.StatusNotFound}
	}
	if rep.err != nil {
		return rep.err
	}
	if result == nil || rep.body == "" {
		return nil
	}
	return json.Unmarshal([]byte(rep.body), result)
}

func key(method, path string) string {
	return method + " " + normalize(path)
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}
