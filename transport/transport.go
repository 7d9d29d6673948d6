package transport

//go:generate mockgen -source=transport.go -destination=mock/transport.go -package=mock_transport

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// RequestOptions is the loosely typed per-request configuration handed to a
// Transport. Recognised keys are "params" (query parameters) and "headers".
type RequestOptions map[string]any

func (o RequestOptions) Params() map[string]any {
	return stringMap(o["params"])
}

func (o RequestOptions) Headers() map[string]any {
	return stringMap(o["headers"])
}

func stringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return nil
}

type Response struct {
	Data    any
	Status  int
	Header  http.Header
	Options RequestOptions
	// Cached is set when the response was produced from the local model.
	Cached bool
}

type StatusError struct {
	Method string
	URL    string
	Status int
	Data   any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}

// Interceptor transforms every outgoing request before it is sent.
type Interceptor func(req *http.Request) error

type Transport interface {
	Get(ctx context.Context, url string, opts RequestOptions) (*Response, error)
	Delete(ctx context.Context, url string, opts RequestOptions) (*Response, error)
	Head(ctx context.Context, url string, opts RequestOptions) (*Response, error)
	Post(ctx context.Context, url string, body any, opts RequestOptions) (*Response, error)
	Put(ctx context.Context, url string, body any, opts RequestOptions) (*Response, error)
	Patch(ctx context.Context, url string, body any, opts RequestOptions) (*Response, error)
	Use(name string, interceptor Interceptor)
}

type Call func(ctx context.Context) (*Response, error)

// All runs calls concurrently and returns their responses in call order.
// The first failure cancels the remaining calls and is returned alone.
func All(ctx context.Context, calls ...Call) ([]*Response, error) {
	responses := make([]*Response, len(calls))
	eg, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		eg.Go(func() error {
			res, err := call(ctx)
			if err != nil {
				return err
			}
			responses[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

func BearerToken(token string) Interceptor {
	return func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}
