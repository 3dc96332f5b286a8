package retrieval

import (
	"sort"
	"strings"
)

// Filter restricts retrieval to chunks whose metadata matches every key.
// For each key, the chunk matches when any allowed value equals any of the
// comma-separated tokens stored under that key. Comparison is
// case-insensitive and whitespace-trimmed.
type Filter map[string][]string

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	for _, values := range f {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
	}
	return true
}

// Match reports whether the chunk metadata satisfies every filter key.
// A key missing from the metadata never matches.
func (f Filter) Match(metadata map[string]string) bool {
	for key, allowed := range f {
		wanted := make([]string, 0, len(allowed))
		for _, v := range allowed {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				wanted = append(wanted, v)
			}
		}
		if len(wanted) == 0 {
			continue
		}

		raw, ok := metadata[key]
		if !ok {
			return false
		}
		tokens := strings.Split(raw, ",")
		matched := false
		for _, token := range tokens {
			token = strings.ToLower(strings.TrimSpace(token))
			for _, want := range wanted {
				if token == want {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can mutate their filter after handing
// it to the engine.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}
	out := make(Filter, len(f))
	for key, values := range f {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// canonical serializes the filter deterministically for cache keys.
func (f Filter) canonical() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		values := make([]string, 0, len(f[key]))
		for _, v := range f[key] {
			values = append(values, strings.ToLower(strings.TrimSpace(v)))
		}
		sort.Strings(values)
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(strings.Join(values, "|"))
		b.WriteString(";")
	}
	return b.String()
}
