package credential

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// policy selects how a binder reacts to a value that fails coercion.
type policy int

const (
	// lenient keeps the field's current value and moves on.
	lenient policy = iota
	// strict aborts binding with a *FieldBindingError.
	strict
)

// binding maps one input key onto a field of C.
type binding[C any] struct {
	key string
	set func(c *C, raw string) error
}

// bind applies every entry of table whose key is present in values. Repeated
// keys are joined with ',' before coercion.
func bind[C any](c *C, values url.Values, table []binding[C], p policy) error {
	for _, b := range table {
		vs, ok := values[b.key]
		if !ok || len(vs) == 0 {
			continue
		}

		raw := strings.Join(vs, ",")
		if err := b.set(c, raw); err != nil {
			if p == lenient {
				continue
			}
			return &FieldBindingError{Key: b.key, Value: raw, Err: err}
		}
	}
	return nil
}

// queryValues parses uri and decodes its query component with standard query
// rules ('+' is a space, percent escapes are resolved). Pairs split on '&'
// only, so a raw ';' stays part of the value. Undecodable pairs are skipped.
func queryValues(uri string) (url.Values, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}

	values := make(url.Values)
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		values.Add(key, value)
	}
	return values, nil
}

func textField[C any](field func(*C) *string) func(*C, string) error {
	return func(c *C, raw string) error {
		*field(c) = raw
		return nil
	}
}

func intField[C any](field func(*C) *int) func(*C, string) error {
	return func(c *C, raw string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return err
		}
		*field(c) = int(n)
		return nil
	}
}

func enumField[C any, E ~string](field func(*C) *E, allowed []E) func(*C, string) error {
	return func(c *C, raw string) error {
		v, err := parseEnum(raw, allowed)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

// parseEnum matches raw against the allowed names, ignoring case.
func parseEnum[E ~string](raw string, allowed []E) (E, error) {
	name := strings.TrimSpace(raw)
	for _, v := range allowed {
		if strings.EqualFold(string(v), name) {
			return v, nil
		}
	}
	var zero E
	return zero, fmt.Errorf("invalid value %q for %T", raw, zero)
}

// valuesFromMap adapts form-style field values to the binder input.
func valuesFromMap(m map[string]string) url.Values {
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v)
	}
	return values
}
