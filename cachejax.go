// Package cachejax answers reads from a local model when it already holds the
// requested data and falls back to an HTTP transport otherwise, returning the
// same response envelope in both cases.
package cachejax

import (
	"context"
	"log/slog"

	"github.com/Arthur1/cachejax/model"
	"github.com/Arthur1/cachejax/transport"
)

// AuthorizationInterceptor is the name SetAuthorization registers its
// interceptor under.
const AuthorizationInterceptor = "authorization"

type Client struct {
	model     model.Model
	config    Config
	transport transport.Transport
	logger    *slog.Logger
	metrics   *Metrics
}

var defaultLogger = slog.Default()

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

type Option interface {
	apply(opts *options)
}

var (
	_ Option = loggerOption{}
	_ Option = metricsOption{}
)

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(opts *options) {
	opts.logger = o.logger
}

func WithLogger(logger *slog.Logger) loggerOption {
	return loggerOption{logger}
}

type metricsOption struct {
	metrics *Metrics
}

func (o metricsOption) apply(opts *options) {
	opts.metrics = o.metrics
}

func WithMetrics(metrics *Metrics) metricsOption {
	return metricsOption{metrics}
}

// New returns a Client reading from m and fetching through t. config is not
// copied and must not be modified afterwards.
func New(m model.Model, config Config, t transport.Transport, opts ...Option) *Client {
	options := &options{
		logger: defaultLogger,
	}
	for _, o := range opts {
		o.apply(options)
	}
	if config == nil {
		config = Config{}
	}
	return &Client{
		model:     m,
		config:    config,
		transport: t,
		logger:    options.logger,
		metrics:   options.metrics,
	}
}

// CallOptions holds per-call overrides.
type CallOptions struct {
	ForceFetch  bool
	Root        Root
	ExtraParams map[string]any
}

type GetOption interface {
	applyGet(opts *CallOptions)
}

var (
	_ GetOption = forceFetchOption{}
	_ GetOption = rootOption{}
	_ GetOption = extraParamsOption{}
)

type forceFetchOption struct{}

func (forceFetchOption) applyGet(opts *CallOptions) {
	opts.ForceFetch = true
}

// ForceFetch skips the model and always dispatches the request.
func ForceFetch() forceFetchOption {
	return forceFetchOption{}
}

type rootOption struct {
	root Root
}

func (o rootOption) applyGet(opts *CallOptions) {
	opts.Root = o.root
}

func WithRoot(root Root) rootOption {
	return rootOption{root}
}

type extraParamsOption map[string]any

func (o extraParamsOption) applyGet(opts *CallOptions) {
	opts.ExtraParams = o
}

// WithExtraParams adds query parameters that never take part in cache
// filtering.
func WithExtraParams(params map[string]any) extraParamsOption {
	return extraParamsOption(params)
}

// Get returns the data for path, from the model when it holds usable data
// matching params and from the transport otherwise.
func (c *Client) Get(ctx context.Context, path string, params Params, opts ...GetOption) (*transport.Response, error) {
	callOpts := &CallOptions{}
	for _, o := range opts {
		o.applyGet(callOpts)
	}

	if !callOpts.ForceFetch {
		if cached := c.lookup(ctx, path, params); usable(cached) {
			c.logger.DebugContext(ctx, "cache hit", slog.String("path", path))
			c.metrics.RecordCacheHit(path)
			return shapeResponse(path, c.config, callOpts.Root, cached), nil
		}
	}

	url, reqOpts, err := buildRequest(path, params, c.config, callOpts.ExtraParams)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "fetch", slog.String("path", path), slog.String("url", url), slog.Bool("force", callOpts.ForceFetch))
	c.metrics.RecordCacheMiss(path)
	return c.transport.Get(ctx, url, reqOpts)
}

func (c *Client) lookup(ctx context.Context, path string, params Params) any {
	data, err := c.model.Get(ctx, path)
	if err != nil {
		c.logger.ErrorContext(ctx, "through cachejax because failed to read model", slog.String("path", path), slog.Any("error", err))
		c.metrics.RecordModelError(path)
		return nil
	}
	return lookupCache(path, data, params, c.config)
}

// Batch issues request for every item concurrently and returns the value under
// the root key of path from each response, in item order. It fails as soon as
// one request fails.
func Batch[T any](ctx context.Context, c *Client, path string, items []T, request func(ctx context.Context, item T) (*transport.Response, error)) ([]any, error) {
	calls := make([]transport.Call, len(items))
	for i, item := range items {
		item := item
		calls[i] = func(ctx context.Context) (*transport.Response, error) {
			return request(ctx, item)
		}
	}
	responses, err := c.All(ctx, calls...)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(responses))
	for i, res := range responses {
		out[i] = unwrapRoot(path, c.config, res)
	}
	return out, nil
}

func (c *Client) All(ctx context.Context, calls ...transport.Call) ([]*transport.Response, error) {
	return transport.All(ctx, calls...)
}

func (c *Client) Delete(ctx context.Context, url string, opts transport.RequestOptions) (*transport.Response, error) {
	return c.transport.Delete(ctx, url, opts)
}

func (c *Client) Head(ctx context.Context, url string, opts transport.RequestOptions) (*transport.Response, error) {
	return c.transport.Head(ctx, url, opts)
}

func (c *Client) Post(ctx context.Context, url string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return c.transport.Post(ctx, url, body, opts)
}

func (c *Client) Put(ctx context.Context, url string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return c.transport.Put(ctx, url, body, opts)
}

func (c *Client) Patch(ctx context.Context, url string, body any, opts transport.RequestOptions) (*transport.Response, error) {
	return c.transport.Patch(ctx, url, body, opts)
}

// SetAuthorization sends "Authorization: Bearer <token>" on every later
// request made through the transport. Calling it again replaces the token.
func (c *Client) SetAuthorization(token string) {
	c.transport.Use(AuthorizationInterceptor, transport.BearerToken(token))
}
