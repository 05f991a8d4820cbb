package credential

import (
	"fmt"
	"strings"
)

type ruleKind int

const (
	ruleRequired ruleKind = iota
	ruleRange
)

// rule is one declarative constraint on a field of credential type C. The
// accessor closures replace runtime field inspection: each table lists its
// fields explicitly.
type rule[C any] struct {
	field   string
	kind    ruleKind
	min     int
	max     int
	message string
	text    func(*C) string
	number  func(*C) int
}

// required declares a field that must hold a non-blank value.
func required[C any](field, message string, get func(*C) string) rule[C] {
	return rule[C]{field: field, kind: ruleRequired, message: message, text: get}
}

// between declares an integer field bounded by [lo, hi].
func between[C any](field string, lo, hi int, message string, get func(*C) int) rule[C] {
	return rule[C]{field: field, kind: ruleRange, min: lo, max: hi, message: message, number: get}
}

func (r rule[C]) check(c *C) (Violation, bool) {
	switch r.kind {
	case ruleRequired:
		if strings.TrimSpace(r.text(c)) == "" {
			return Violation{Field: r.field, Kind: ErrMissingRequiredField, Message: r.message}, true
		}
	case ruleRange:
		if n := r.number(c); n < r.min || n > r.max {
			return Violation{Field: r.field, Kind: ErrOutOfRangeField, Message: r.message}, true
		}
	}
	return Violation{}, false
}

// describe renders the rule for the input catalog.
func (r rule[C]) describe() ValidationRule {
	if r.kind == ruleRange {
		return ValidationRule{Rule: fmt.Sprintf("range:%d..%d", r.min, r.max), ErrorMessage: r.message}
	}
	return ValidationRule{Rule: "required", ErrorMessage: r.message}
}

// validate evaluates every rule independently and returns a *ValidationError
// holding all violations, or nil when none fired.
func validate[C any](c *C, rules []rule[C]) error {
	var violations []Violation
	for _, r := range rules {
		if v, failed := r.check(c); failed {
			violations = append(violations, v)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// rulesFor returns the catalog form of every rule declared on field.
func rulesFor[C any](field string, rules []rule[C]) []ValidationRule {
	out := []ValidationRule{}
	for _, r := range rules {
		if r.field == field {
			out = append(out, r.describe())
		}
	}
	return out
}
