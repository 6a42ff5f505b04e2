// Package trace normalizes loosely-typed task records captured on the client.
//
// Capture code in the wild is inconsistent: fields go missing, numbers arrive
// as strings of the wrong shape, lists arrive as scalars. Every accessor in
// this package coerces defensively and falls back to a caller-supplied
// default instead of failing, so feature extraction never has to care about
// malformed input.
package trace

import "sort"

// Record is one captured mini-task, as decoded from JSON.
type Record map[string]any

// Session maps task names to their records for one domain and one attempt.
type Session map[string]Record

// ParseSession coerces an arbitrary decoded JSON value into a Session.
// Returns ok=false when v is not a mapping.
func ParseSession(v any) (Session, bool) {
	switch m := v.(type) {
	case Session:
		return m, true
	case map[string]Record:
		return Session(m), true
	case map[string]any:
		s := make(Session, len(m))
		for name, raw := range m {
			if rec, ok := raw.(map[string]any); ok {
				s[name] = Record(rec)
			} else {
				// A task slot holding a non-mapping contributes nothing.
				s[name] = Record{}
			}
		}
		return s, true
	default:
		return nil, false
	}
}

// TaskNames returns the session's task names in sorted order, so that
// task-ordered sequences (trend fits) are stable across calls.
func (s Session) TaskNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the record carries the key at all.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Float returns the field as a float64, or def when missing or non-numeric.
func (r Record) Float(key string, def float64) float64 {
	v, ok := r[key]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

// FirstFloat returns the first present numeric field among keys, or def.
// Capture clients have used several spellings for the same field over time
// (e.g. "correct" vs "correct_count").
func (r Record) FirstFloat(def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := r[key]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
	}
	return def
}

// Floats returns the field as a numeric slice. Missing fields, scalars, and
// non-list values yield an empty slice; non-numeric elements are skipped.
func (r Record) Floats(key string) []float64 {
	v, ok := r[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		if fs, ok := v.([]float64); ok {
			out := make([]float64, len(fs))
			copy(out, fs)
			return out
		}
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, el := range list {
		if f, ok := toFloat(el); ok {
			out = append(out, f)
		}
	}
	return out
}

// Str returns the field as a string, or def when missing or not a string.
func (r Record) Str(key, def string) string {
	v, ok := r[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Bool returns the field as a bool, or def when missing or not a bool.
func (r Record) Bool(key string, def bool) bool {
	v, ok := r[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// toFloat coerces any JSON-decoded numeric representation to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
