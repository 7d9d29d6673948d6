package model

//go:generate mockgen -source=model.go -destination=mock/model.go -package=mock_model

import "context"

// Model is the externally owned data store keyed by logical path. A value is a
// record, a sequence of records, or nil when nothing is stored.
// Implementations are only ever read.
//
// Records must be map[string]any for sequences to be filtered by parameter.
// A single typed record (a struct or a pointer to one) is returned as is and
// counts as cached data unless it is the zero value.
type Model interface {
	Get(ctx context.Context, path string) (any, error)
}

type Map map[string]any

var _ Model = Map(nil)

func (m Map) Get(_ context.Context, path string) (any, error) {
	return m[path], nil
}

type Func func(ctx context.Context, path string) (any, error)

var _ Model = Func(nil)

func (f Func) Get(ctx context.Context, path string) (any, error) {
	return f(ctx, path)
}
