package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/ohler55/ojg/oj"
	"golang.org/x/sync/singleflight"

	"github.com/Arthur1/cachejax/transport"
)

type Transport struct {
	child        http.RoundTripper
	logger       *slog.Logger
	baseURL      *url.URL
	header       http.Header
	mu           sync.RWMutex
	interceptors []namedInterceptor
	group        singleflight.Group
}

var _ transport.Transport = (*Transport)(nil)

type namedInterceptor struct {
	name string
	fn   transport.Interceptor
}

var (
	defaultChild  = http.DefaultTransport
	defaultLogger = slog.Default()
)

type options struct {
	child   http.RoundTripper
	logger  *slog.Logger
	baseURL *url.URL
	header  http.Header
}

type Option interface {
	apply(opts *options)
}

var (
	_ Option = childOption{}
	_ Option = loggerOption{}
	_ Option = baseURLOption{}
	_ Option = headerOption{}
)

type childOption struct {
	child http.RoundTripper
}

func (o childOption) apply(opts *options) {
	opts.child = o.child
}

// WithChild sets the RoundTripper that performs the actual exchange, for
// example an http-client-cache Transport.
func WithChild(child http.RoundTripper) childOption {
	return childOption{child}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(opts *options) {
	opts.logger = o.logger
}

func WithLogger(logger *slog.Logger) loggerOption {
	return loggerOption{logger}
}

type baseURLOption struct {
	baseURL *url.URL
}

func (o baseURLOption) apply(opts *options) {
	opts.baseURL = o.baseURL
}

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base *url.URL) baseURLOption {
	return baseURLOption{base}
}

type headerOption struct {
	key, value string
}

func (o headerOption) apply(opts *options) {
	opts.header.Add(o.key, o.value)
}

func WithHeader(key, value string) headerOption {
	return headerOption{key, value}
}

func New(opts ...Option) *Transport {
	options := &options{
		child:  defaultChild,
		logger: defaultLogger,
		header: http.Header{"Accept": {"application/json, text/plain, */*"}},
	}
	for _, o := range opts {
		o.apply(options)
	}
	return &Transport{
		child:   options.child,
		logger:  options.logger,
		baseURL: options.baseURL,
		header:  options.header,
	}
}

// Use registers interceptor under name. Registering a name twice replaces the
// earlier interceptor in place, keeping its position in the chain.
func (t *Transport) Use(name string, interceptor transport.Interceptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.interceptors {
		if t.interceptors[i].name == name {
			t.interceptors[i].fn = interceptor
			return
		}
	}
	t.interceptors = append(t.interceptors, namedInterceptor{name, interceptor})
}

// Get coalesces concurrent identical requests into one exchange. The shared
// exchange is not tied to any single caller's cancellation; each caller stops
// waiting when its own ctx is done and decodes its own copy of the body.
func (t *Transport) Get(ctx context.Context, rawURL string, opts transport.RequestOptions) (*transport.Response, error) {
	req, err := t.newRequest(ctx, http.MethodGet, rawURL, nil, opts)
	if err != nil {
		return nil, err
	}
	key := requestKey(req)
	shared := req.WithContext(context.WithoutCancel(ctx))
	ch := t.group.DoChan(key, func() (any, error) {
		return t.fetch(shared)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			t.logger.DebugContext(ctx, "coalesced concurrent request", slog.String("url", req.URL.String()))
		}
		return t.respond(req, r.Val.(*exchange), opts)
	}
}

func (t *Transport) Delete(ctx context.Context, rawURL string, opts transport.RequestOptions) (*transport.Response, error) {
	return t.send(ctx, http.MethodDelete, rawURL, nil, opts)
}

func (t *Transport) Head(ctx context.Context, rawURL string, opts transport.RequestOptions) (*transport.Response, error) {
	return t.send(ctx, http.MethodHead, rawURL, nil, opts)
}

func (t *Transport) Post(ctx context.Context, rawURL string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return t.send(ctx, http.MethodPost, rawURL, body, opts)
}

func (t *Transport) Put(ctx context.Context, rawURL string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return t.send(ctx, http.MethodPut, rawURL, body, opts)
}

func (t *Transport) Patch(ctx context.Context, rawURL string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return t.send(ctx, http.MethodPatch, rawURL, body, opts)
}

func (t *Transport) send(ctx context.Context, method, rawURL string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	req, err := t.newRequest(ctx, method, rawURL, body, opts)
	if err != nil {
		return nil, err
	}
	return t.do(req, opts)
}

func (t *Transport) newRequest(ctx context.Context, method, rawURL string, body any, opts transport.RequestOptions) (*http.Request, error) {
	u, err := t.resolveURL(rawURL, opts.Params())
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if body != nil {
		b, err := encodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	for k, vs := range t.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers() {
		req.Header.Set(k, fmt.Sprint(v))
	}

	t.mu.RLock()
	interceptors := make([]namedInterceptor, len(t.interceptors))
	copy(interceptors, t.interceptors)
	t.mu.RUnlock()
	for _, i := range interceptors {
		if err := i.fn(req); err != nil {
			return nil, fmt.Errorf("interceptor %q: %w", i.name, err)
		}
	}
	return req, nil
}

func (t *Transport) resolveURL(rawURL string, params map[string]any) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if t.baseURL != nil {
		u = t.baseURL.ResolveReference(u)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (t *Transport) do(req *http.Request, opts transport.RequestOptions) (*transport.Response, error) {
	ex, err := t.fetch(req)
	if err != nil {
		return nil, err
	}
	return t.respond(req, ex, opts)
}

// exchange is the raw outcome of a round trip. It is shared read-only between
// coalesced callers.
type exchange struct {
	status int
	header http.Header
	body   []byte
}

func (t *Transport) fetch(req *http.Request) (*exchange, error) {
	res, err := t.child.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return &exchange{status: res.StatusCode, header: res.Header, body: b}, nil
}

func (t *Transport) respond(req *http.Request, ex *exchange, opts transport.RequestOptions) (*transport.Response, error) {
	data := decodeBody(ex.body)
	if ex.status < 200 || ex.status >= 300 {
		t.logger.DebugContext(req.Context(), "request failed", slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.Int("status", ex.status))
		return nil, &transport.StatusError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: ex.status,
			Data:   data,
		}
	}
	return &transport.Response{
		Data:    data,
		Status:  ex.status,
		Header:  ex.header.Clone(),
		Options: opts,
	}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return oj.Marshal(body)
}

func decodeBody(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	v, err := oj.Parse(b)
	if err != nil {
		return string(b)
	}
	return v
}

func requestKey(req *http.Request) string {
	h := fnv.New64a()
	h.Write([]byte(req.Method))
	h.Write([]byte(req.URL.String()))
	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte(strings.Join(req.Header[k], ",")))
	}
	return fmt.Sprintf("%x", h.Sum64())
}
