package cachejax

import (
	"fmt"

	"github.com/Arthur1/cachejax/internal/pathtemplate"
	"github.com/Arthur1/cachejax/transport"
)

// buildRequest returns the URL and request options for fetching path.
//
// A mapping with named segments ("/messages/:id") is expanded with params and
// only extra is sent as query. A flat mapping, or the path itself when there is
// no mapping, is sent with params as query and every extra key copied on top of
// the options, so an extra "params" entry replaces them.
func buildRequest(path string, params Params, config Config, extra map[string]any) (string, transport.RequestOptions, error) {
	base, _ := resolveBaseConfig(path, config)
	mappedURL := base.Mapping

	if pathtemplate.IsTemplate(mappedURL) {
		tmpl, err := pathtemplate.Compile(mappedURL)
		if err != nil {
			return "", nil, err
		}
		u, err := tmpl.Expand(params.Map())
		if err != nil {
			return "", nil, fmt.Errorf("build request for %q: %w", path, err)
		}
		opts := transport.RequestOptions{}
		if len(extra) > 0 {
			opts["params"] = extra
		}
		return u, opts, nil
	}

	u := path
	if mappedURL != "" {
		u = mappedURL
	}
	return u, merge(transport.RequestOptions{"params": params.Map()}, extra), nil
}

func merge(opts transport.RequestOptions, extra map[string]any) transport.RequestOptions {
	for k, v := range extra {
		opts[k] = v
	}
	return opts
}
