package cachejax

import (
	"net/http"

	"github.com/Arthur1/cachejax/transport"
)

// shapeResponse wraps cached data in the envelope a live response for the
// same root configuration would have.
func shapeResponse(path string, config Config, callRoot Root, data any) *transport.Response {
	res := &transport.Response{
		Data:   data,
		Status: http.StatusOK,
		Cached: true,
	}
	if root, ok := resolveRoot(path, config, callRoot); ok {
		res.Data = map[string]any{root: data}
	}
	return res
}

// unwrapRoot is the inverse of the envelope: it extracts the value stored under
// the resolved root key of a response.
func unwrapRoot(path string, config Config, res *transport.Response) any {
	root, ok := resolveRoot(path, config, Root{})
	if !ok {
		return res.Data
	}
	m, _ := res.Data.(map[string]any)
	return m[root]
}
