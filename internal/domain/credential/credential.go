// Package credential encodes OTP enrollment and Wi-Fi join credentials into
// the exact strings scanner apps expect.
//
// Each credential type declares its binding and validation rules in static
// tables. OTP input is bound leniently (bad values keep the default) while
// Wi-Fi input is bound strictly (bad values are an error); the two policies
// are deliberate and must not be unified.
package credential

import (
	"fmt"
	"strings"
)

// Kind identifies a credential variant.
type Kind string

const (
	KindOTP  Kind = "otp"
	KindWifi Kind = "wifi"
)

// Kinds returns every supported credential kind.
func Kinds() []Kind { return []Kind{KindOTP, KindWifi} }

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k, err := parseEnum(s, Kinds())
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Credential is the capability shared by every credential variant. The set
// of implementations is closed to this package.
type Credential interface {
	Kind() Kind
	Validate() error
	// Serialize renders the enrollment string.
	Serialize() (string, error)
	Fields() []InputDefinition
	Parameters() Parameters
	// DisplayName is the optional user-facing label of the credential.
	DisplayName() string

	bindFields(values map[string]string) error
}

var (
	_ Credential = (*OTP)(nil)
	_ Credential = (*Wifi)(nil)
)

// New returns a default-valued credential of the given kind.
func New(kind Kind) (Credential, error) {
	switch kind {
	case KindOTP:
		return NewOTP(), nil
	case KindWifi:
		return NewWifi(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Parse builds a credential of the given kind from uri using that kind's
// binding policy.
func Parse(kind Kind, uri string) (Credential, error) {
	switch kind {
	case KindOTP:
		return ParseOTP(uri), nil
	case KindWifi:
		w, err := ParseWifi(uri)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Assign sets fields on c from values keyed by public field name (as listed
// by Fields, plus "Name"). Unknown names are ignored; a value that cannot be
// coerced returns a *FieldBindingError and leaves earlier fields applied.
func Assign(c Credential, values map[string]string) error {
	return c.bindFields(values)
}

// Describe returns a one-line summary for logs.
func Describe(c Credential) string {
	return fmt.Sprintf("QR Code Type: %s, Name: %s, Parameters: %s",
		strings.ToUpper(string(c.Kind())), c.DisplayName(), c.Parameters())
}
