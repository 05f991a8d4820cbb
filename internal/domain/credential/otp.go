package credential

import (
	"fmt"
	"maps"
	"math"
	"strings"
)

// OTPType selects time-based or counter-based one-time passwords.
type OTPType string

const (
	TOTP OTPType = "TOTP"
	HOTP OTPType = "HOTP"
)

// OTPTypes returns the supported OTP types in declaration order.
func OTPTypes() []OTPType { return []OTPType{TOTP, HOTP} }

// Algorithm is the HMAC hash an authenticator app should use.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA512 Algorithm = "SHA512"
)

// Algorithms returns the supported hash algorithms in declaration order.
func Algorithms() []Algorithm { return []Algorithm{SHA1, SHA256, SHA512} }

// OTP defaults applied by NewOTP.
const (
	DefaultDigits = 6
	DefaultPeriod = 30
)

// OTP is a one-time-password enrollment credential.
type OTP struct {
	Name        string
	AccountName string
	Issuer      string
	Secret      string
	Type        OTPType
	Algorithm   Algorithm
	Digits      int
	Period      int
	// Counter only matters for HOTP but is range-checked for every type.
	Counter int

	params Parameters
}

var otpRules = []rule[OTP]{
	required("AccountName", "AccountName is required.", func(c *OTP) string { return c.AccountName }),
	required("Issuer", "Issuer is required.", func(c *OTP) string { return c.Issuer }),
	required("Secret", "Secret is required.", func(c *OTP) string { return c.Secret }),
	between("Digits", 1, math.MaxInt32, "Digits must be greater than 0.", func(c *OTP) int { return c.Digits }),
	between("Period", 1, math.MaxInt32, "Period must be greater than 0.", func(c *OTP) int { return c.Period }),
	between("Counter", 0, math.MaxInt32, "Counter must be non-negative for HOTP.", func(c *OTP) int { return c.Counter }),
}

// otpURIBindings maps the legacy query keys accepted by ParseOTP.
var otpURIBindings = []binding[OTP]{
	{key: "applicationName", set: textField(func(c *OTP) *string { return &c.Issuer })},
	{key: "otpSeed", set: textField(func(c *OTP) *string { return &c.Secret })},
	{key: "accountName", set: textField(func(c *OTP) *string { return &c.AccountName })},
	{key: "type", set: enumField(func(c *OTP) *OTPType { return &c.Type }, OTPTypes())},
	{key: "algorithm", set: enumField(func(c *OTP) *Algorithm { return &c.Algorithm }, Algorithms())},
	{key: "digits", set: intField(func(c *OTP) *int { return &c.Digits })},
	{key: "period", set: intField(func(c *OTP) *int { return &c.Period })},
	{key: "counter", set: intField(func(c *OTP) *int { return &c.Counter })},
}

// otpFieldBindings maps public field names, as submitted by a form.
var otpFieldBindings = []binding[OTP]{
	{key: "Name", set: textField(func(c *OTP) *string { return &c.Name })},
	{key: "AccountName", set: textField(func(c *OTP) *string { return &c.AccountName })},
	{key: "Issuer", set: textField(func(c *OTP) *string { return &c.Issuer })},
	{key: "Secret", set: textField(func(c *OTP) *string { return &c.Secret })},
	{key: "Type", set: enumField(func(c *OTP) *OTPType { return &c.Type }, OTPTypes())},
	{key: "Algorithm", set: enumField(func(c *OTP) *Algorithm { return &c.Algorithm }, Algorithms())},
	{key: "Digits", set: intField(func(c *OTP) *int { return &c.Digits })},
	{key: "Period", set: intField(func(c *OTP) *int { return &c.Period })},
	{key: "Counter", set: intField(func(c *OTP) *int { return &c.Counter })},
}

// NewOTP returns an OTP credential holding only default values.
func NewOTP() *OTP {
	return &OTP{
		Type:      TOTP,
		Algorithm: SHA1,
		Digits:    DefaultDigits,
		Period:    DefaultPeriod,
		params:    Parameters{},
	}
}

// ParseOTP builds an OTP credential from a URI carrying the legacy keys
// applicationName, otpSeed, accountName, type, algorithm, digits, period and
// counter. Values that fail coercion are ignored and the default is kept; a
// blank or unparseable uri yields the defaults.
func ParseOTP(uri string) *OTP {
	c := NewOTP()
	if strings.TrimSpace(uri) == "" {
		return c
	}

	c.params = ExtractParameters(uri)
	c.Name = c.params["name"]

	values, err := queryValues(uri)
	if err != nil {
		return c
	}
	_ = bind(c, values, otpURIBindings, lenient)

	return c
}

// Kind implements Credential.
func (c *OTP) Kind() Kind { return KindOTP }

// Parameters returns a copy of the raw parameters the credential was
// parsed from.
func (c *OTP) Parameters() Parameters { return maps.Clone(c.params) }

// DisplayName implements Credential.
func (c *OTP) DisplayName() string { return c.Name }

// Validate checks every OTP rule and reports all violations together.
func (c *OTP) Validate() error {
	return validate(c, otpRules)
}

// URI renders the otpauth:// enrollment link. Field order is fixed and the
// counter segment is only present for HOTP.
func (c *OTP) URI() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	issuer := escapeDataString(c.Issuer)

	uri := fmt.Sprintf("otpauth://%s/%s:%s?secret=%s&issuer=%s&algorithm=%s&digits=%d&period=%d",
		strings.ToLower(string(c.Type)),
		issuer,
		encodeAccountName(c.AccountName),
		normalizeSecret(c.Secret),
		issuer,
		strings.ToUpper(string(c.Algorithm)),
		c.Digits,
		c.Period,
	)

	if c.Type == HOTP {
		uri += fmt.Sprintf("&counter=%d", c.Counter)
	}

	return uri, nil
}

// Serialize implements Credential.
func (c *OTP) Serialize() (string, error) { return c.URI() }

// Fields implements Credential.
func (c *OTP) Fields() []InputDefinition {
	return []InputDefinition{
		{
			Name:            "AccountName",
			Kind:            InputText,
			Placeholder:     "john.doe@email.com",
			Description:     "Account the code belongs to. An email address is kept as-is.",
			ValidationRules: rulesFor("AccountName", otpRules),
		},
		{
			Name:            "Issuer",
			Kind:            InputText,
			Placeholder:     "ACME Co",
			Description:     "Service or company shown in the authenticator app.",
			ValidationRules: rulesFor("Issuer", otpRules),
		},
		{
			Name:            "Secret",
			Kind:            InputText,
			Placeholder:     "HXDMVJECJJWSRB3HWIZR4IFUGFTMXBOZ",
			Description:     "Shared secret. Anything that is not already **base32** is encoded before use.",
			ValidationRules: rulesFor("Secret", otpRules),
		},
		{
			Name:            "Type",
			Kind:            InputDropdown,
			Description:     "`TOTP` is time-based, `HOTP` is counter-based.",
			Options:         enumNames(OTPTypes()),
			ValidationRules: rulesFor("Type", otpRules),
		},
		{
			Name:            "Algorithm",
			Kind:            InputDropdown,
			Options:         enumNames(Algorithms()),
			ValidationRules: rulesFor("Algorithm", otpRules),
		},
		{
			Name:            "Digits",
			Kind:            InputText,
			Placeholder:     "6",
			Description:     "Length of each generated code.",
			ValidationRules: rulesFor("Digits", otpRules),
		},
		{
			Name:            "Period",
			Kind:            InputText,
			Placeholder:     "30",
			Description:     "Seconds each TOTP code stays valid.",
			ValidationRules: rulesFor("Period", otpRules),
		},
		{
			Name:            "Counter",
			Kind:            InputText,
			Placeholder:     "0",
			Description:     "Initial counter, used by HOTP only.",
			ValidationRules: rulesFor("Counter", otpRules),
		},
	}
}

func (c *OTP) bindFields(values map[string]string) error {
	return bind(c, valuesFromMap(values), otpFieldBindings, strict)
}
