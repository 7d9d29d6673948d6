package cachejax

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type rootKind uint8

const (
	rootUnset rootKind = iota
	rootKey
	rootDisabled
	rootPath
)

// Root selects the key under which data is nested in a response envelope.
// The zero value leaves the decision to the next level of configuration.
type Root struct {
	kind rootKind
	key  string
}

// RootKey nests data under key. An empty key behaves as the zero Root.
func RootKey(key string) Root {
	return Root{kind: rootKey, key: key}
}

// NoRoot returns data without an envelope key.
func NoRoot() Root {
	return Root{kind: rootDisabled}
}

// RootPath nests data under the logical path. It resolves exactly like an
// unset Root.
func RootPath() Root {
	return Root{kind: rootPath}
}

func (r Root) IsZero() bool {
	return r.kind == rootUnset
}

func (r Root) explicitKey() (string, bool) {
	if r.kind == rootKey && r.key != "" {
		return r.key, true
	}
	return "", false
}

func (r Root) disabled() bool {
	return r.kind == rootDisabled
}

func (r Root) String() string {
	switch r.kind {
	case rootKey:
		return r.key
	case rootDisabled:
		return "false"
	case rootPath:
		return "true"
	}
	return ""
}

// UnmarshalYAML accepts either a key string or a boolean.
func (r *Root) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: root must be a string or a boolean", node.Line)
	}
	if node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			*r = RootPath()
		} else {
			*r = NoRoot()
		}
		return nil
	}
	*r = RootKey(node.Value)
	return nil
}

type PathConfig struct {
	Mapping string `yaml:"mapping"`
	Root    Root   `yaml:"root"`
	Batch   bool   `yaml:"batch"`
}

// Config maps logical paths to their configuration.
type Config map[string]PathConfig

func resolveBaseConfig(path string, config Config) (PathConfig, bool) {
	c, ok := config[path]
	return c, ok
}

// resolveRoot returns the envelope key for path, or false when the data must
// not be nested.
func resolveRoot(path string, config Config, callRoot Root) (string, bool) {
	if k, ok := callRoot.explicitKey(); ok {
		return k, true
	}
	if callRoot.disabled() {
		return "", false
	}
	base, _ := resolveBaseConfig(path, config)
	if k, ok := base.Root.explicitKey(); ok {
		return k, true
	}
	if base.Root.disabled() {
		return "", false
	}
	return path, true
}

type configFile struct {
	Paths Config `yaml:"paths"`
}

func ParseConfig(b []byte) (Config, error) {
	var f configFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Paths == nil {
		f.Paths = Config{}
	}
	return f.Paths, nil
}

func LoadConfig(filename string) (Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}
