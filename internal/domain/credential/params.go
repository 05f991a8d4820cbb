package credential

import (
	"sort"
	"strings"
)

// Parameters is the flat key/value view of an input's query portion. It is
// built once per input and never mutated afterwards.
type Parameters map[string]string

// ExtractParameters splits everything after the first '?' of uri on '&' and
// each pair on its first '='. Pairs without a non-empty key and a non-empty
// value are dropped; a repeated key keeps its last value. No percent-decoding
// is performed.
func ExtractParameters(uri string) Parameters {
	params := Parameters{}

	_, query, found := strings.Cut(uri, "?")
	if !found {
		return params
	}

	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		params[key] = value
	}

	return params
}

// String renders the parameters sorted by key, for logs and debugging.
func (p Parameters) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, "["+k+", "+p[k]+"]")
	}
	return strings.Join(parts, ", ")
}
