package cachejax

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBaseConfig(t *testing.T) {
	t.Parallel()
	config := Config{"messages": {Mapping: "/messages/:id", Batch: true}}

	got, ok := resolveBaseConfig("messages", config)
	assert.True(t, ok)
	assert.Equal(t, PathConfig{Mapping: "/messages/:id", Batch: true}, got)

	got, ok = resolveBaseConfig("currentUser", config)
	assert.False(t, ok)
	assert.Equal(t, PathConfig{}, got)

	got, ok = resolveBaseConfig("currentUser", nil)
	assert.False(t, ok)
	assert.Equal(t, PathConfig{}, got)
}

func TestResolveRoot(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		base     Root
		call     Root
		wantKey  string
		wantRoot bool
	}{
		{"unset everywhere defaults to the path", Root{}, Root{}, "messages", true},
		{"call key wins over base key", RootKey("base"), RootKey("call"), "call", true},
		{"call key wins over disabled base", NoRoot(), RootKey("call"), "call", true},
		{"call disabled wins over base key", RootKey("base"), NoRoot(), "", false},
		{"base key", RootKey("base"), Root{}, "base", true},
		{"base disabled", NoRoot(), Root{}, "", false},
		{"empty call key falls through", RootKey("base"), RootKey(""), "base", true},
		{"call true falls through", RootKey("base"), RootPath(), "base", true},
		{"base true is the path", RootPath(), Root{}, "messages", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			config := Config{"messages": {Root: tt.base}}
			key, ok := resolveRoot("messages", config, tt.call)
			assert.Equal(t, tt.wantRoot, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}

	t.Run("unconfigured paths use themselves", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{"messages", "currentUser", "http://app.com/x", ""} {
			key, ok := resolveRoot(p, Config{}, Root{})
			assert.True(t, ok)
			assert.Equal(t, p, key)
		}
	})
}

func TestRootString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", Root{}.String())
	assert.Equal(t, "messages", RootKey("messages").String())
	assert.Equal(t, "false", NoRoot().String())
	assert.Equal(t, "true", RootPath().String())
	assert.True(t, Root{}.IsZero())
	assert.False(t, NoRoot().IsZero())
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("string and boolean roots", func(t *testing.T) {
		t.Parallel()
		b := []byte(`
paths:
  currentUser:
    mapping: http://oath.dev/api/v1/me.json
    root: false
  messages:
    mapping: http://app.com/api/v3/messages/:id
    root: message
    batch: true
  conversations:
    root: true
  literal:
    root: "false"
  plain: {}
`)
		got, err := ParseConfig(b)
		assert.NoError(t, err)
		want := Config{
			"currentUser":   {Mapping: "http://oath.dev/api/v1/me.json", Root: NoRoot()},
			"messages":      {Mapping: "http://app.com/api/v3/messages/:id", Root: RootKey("message"), Batch: true},
			"conversations": {Root: RootPath()},
			"literal":       {Root: RootKey("false")},
			"plain":         {},
		}
		assert.Equal(t, want, got)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		got, err := ParseConfig(nil)
		assert.NoError(t, err)
		assert.Equal(t, Config{}, got)
	})

	t.Run("root must be a scalar", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig([]byte("paths:\n  messages:\n    root: [a, b]\n"))
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "cachejax.yaml")
	assert.NoError(t, os.WriteFile(filename, []byte("paths:\n  messages:\n    mapping: /messages\n"), 0o600))

	got, err := LoadConfig(filename)
	assert.NoError(t, err)
	assert.Equal(t, Config{"messages": {Mapping: "/messages"}}, got)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
