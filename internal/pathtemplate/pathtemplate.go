package pathtemplate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrMissingParam = errors.New("missing template parameter")

var (
	paramPattern  = regexp.MustCompile(`:([A-Za-z0-9_]+)`)
	detectPattern = regexp.MustCompile(`:\w`)
	schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*$`)
)

// IsTemplate reports whether s contains at least one named segment such as
// ":id". A port in the authority of an absolute URL is not a segment.
func IsTemplate(s string) bool {
	_, rest := splitAuthority(s)
	return detectPattern.MatchString(rest)
}

type token struct {
	literal string
	name    string
}

type Template struct {
	raw    string
	tokens []token
}

// Compile parses tmpl. In an absolute URL the scheme and authority are
// literal, so "http://host:8080/messages/:id" has the single parameter "id".
func Compile(tmpl string) (*Template, error) {
	t := &Template{raw: tmpl}
	prefix, rest := splitAuthority(tmpl)
	if prefix != "" {
		t.tokens = append(t.tokens, token{literal: prefix})
	}
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(rest, -1) {
		if loc[0] > last {
			t.tokens = append(t.tokens, token{literal: rest[last:loc[0]]})
		}
		t.tokens = append(t.tokens, token{name: rest[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(rest) {
		t.tokens = append(t.tokens, token{literal: rest[last:]})
	}
	return t, nil
}

func splitAuthority(tmpl string) (string, string) {
	i := strings.Index(tmpl, "://")
	if i <= 0 || !schemePattern.MatchString(tmpl[:i]) {
		return "", tmpl
	}
	j := strings.IndexByte(tmpl[i+3:], '/')
	if j < 0 {
		return tmpl, ""
	}
	return tmpl[:i+3+j], tmpl[i+3+j:]
}

func (t *Template) Names() []string {
	var names []string
	for _, tok := range t.tokens {
		if tok.name != "" {
			names = append(names, tok.name)
		}
	}
	return names
}

func (t *Template) Expand(params map[string]any) (string, error) {
	var b strings.Builder
	for _, tok := range t.tokens {
		if tok.name == "" {
			b.WriteString(tok.literal)
			continue
		}
		v, ok := params[tok.name]
		if !ok || v == nil {
			return "", fmt.Errorf("%w %q in %q", ErrMissingParam, tok.name, t.raw)
		}
		b.WriteString(url.PathEscape(fmt.Sprint(v)))
	}
	return b.String(), nil
}

func (t *Template) String() string {
	return t.raw
}
