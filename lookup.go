package cachejax

import "reflect"

// lookupCache narrows data read from the model for path. Only non-empty
// sequences whose first record carries the filter attribute are filtered;
// anything else is returned unchanged.
func lookupCache(path string, data any, params Params, config Config) any {
	records, ok := asRecords(data)
	if !ok || len(records) == 0 {
		return data
	}
	filter, ok := params.filter()
	if !ok || records[0][filter.Key] == nil {
		return data
	}

	matched := make([]any, 0, len(records))
	for _, r := range records {
		if r != nil && strictEqual(r[filter.Key], filter.Value) {
			matched = append(matched, r)
		}
	}

	if base, _ := resolveBaseConfig(path, config); base.Batch {
		if len(matched) == 0 {
			return nil
		}
		return matched[0]
	}
	return matched
}

// asRecords views data as a sequence of records. Elements that are not
// records are kept as nil entries so that positions are preserved.
func asRecords(data any) ([]map[string]any, bool) {
	switch s := data.(type) {
	case []map[string]any:
		return s, true
	case []any:
		records := make([]map[string]any, len(s))
		for i, v := range s {
			records[i], _ = v.(map[string]any)
		}
		return records, true
	}
	return nil, false
}

// strictEqual compares without coercion: "2" never equals 2. Numbers of
// different Go types are compared by value, since decoders disagree on
// whether 2 is an int, an int64 or a float64.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumber(va.Kind()) && isNumber(vb.Kind()) {
		return numericEqual(va, vb)
	}
	if va.Type() != vb.Type() || !va.Type().Comparable() {
		return false
	}
	return a == b
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func numericEqual(a, b reflect.Value) bool {
	ka, kb := a.Kind(), b.Kind()
	switch {
	case isFloat(ka) || isFloat(kb):
		return toFloat(a) == toFloat(b)
	case isInt(ka) && isInt(kb):
		return a.Int() == b.Int()
	case isUint(ka) && isUint(kb):
		return a.Uint() == b.Uint()
	case isInt(ka):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	default:
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	}
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	}
	return v.Float()
}

// usable reports whether cached data can answer a request: it must be
// present and, for sequences, maps and strings, non-empty. Typed records
// (structs) are usable unless they are the zero value.
func usable(data any) bool {
	if data == nil {
		return false
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return v.Len() > 0
	case reflect.Struct:
		return !v.IsZero()
	case reflect.Pointer:
		return !v.IsNil() && usable(v.Elem().Interface())
	}
	return false
}
