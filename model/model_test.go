package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Parallel()
	m := Map{"currentUser": map[string]any{"name": "bob"}}

	got, err := m.Get(context.Background(), "currentUser")
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "bob"}, got)

	got, err = m.Get(context.Background(), "messages")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = Map(nil).Get(context.Background(), "messages")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFunc(t *testing.T) {
	t.Parallel()
	var gotPath string
	f := Func(func(_ context.Context, path string) (any, error) {
		gotPath = path
		return []any{}, nil
	})
	got, err := f.Get(context.Background(), "messages")
	assert.NoError(t, err)
	assert.Equal(t, []any{}, got)
	assert.Equal(t, "messages", gotPath)
}
