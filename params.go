package cachejax

type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of request parameters. The first entry is the
// attribute used to filter cached sequences; every entry is available to path
// templates and query strings.
type Params []Param

func (p Params) filter() (Param, bool) {
	if len(p) == 0 {
		return Param{}, false
	}
	return p[0], true
}

// Map returns the parameters keyed by name. When a key repeats, the first
// entry wins, so the filter value and the template value always agree.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		if _, ok := m[param.Key]; ok {
			continue
		}
		m[param.Key] = param.Value
	}
	return m
}
