package credential

import (
	"maps"
	"strings"
)

// Security is the Wi-Fi authentication scheme.
type Security string

const (
	WPA        Security = "WPA"
	WEP        Security = "WEP"
	NoSecurity Security = "None"
)

// SecurityTypes returns the supported security schemes in declaration order.
func SecurityTypes() []Security { return []Security{WPA, WEP, NoSecurity} }

// Wifi is a network join credential.
type Wifi struct {
	Name     string
	SSID     string
	Password string
	Security Security

	params Parameters
}

var wifiRules = []rule[Wifi]{
	required("SSID", "SSID is required.", func(w *Wifi) string { return w.SSID }),
}

// wifiBindings keys match the public field names exactly (case-sensitive).
var wifiBindings = []binding[Wifi]{
	{key: "SSID", set: textField(func(w *Wifi) *string { return &w.SSID })},
	{key: "Password", set: textField(func(w *Wifi) *string { return &w.Password })},
	{key: "Security", set: enumField(func(w *Wifi) *Security { return &w.Security }, SecurityTypes())},
}

var wifiFieldBindings = append([]binding[Wifi]{
	{key: "Name", set: textField(func(w *Wifi) *string { return &w.Name })},
}, wifiBindings...)

// NewWifi returns a Wi-Fi credential holding only default values.
func NewWifi() *Wifi {
	return &Wifi{Security: WPA, params: Parameters{}}
}

// ParseWifi builds a Wi-Fi credential from a URI whose query keys name the
// fields SSID, Password and Security. Unknown keys are ignored. A value that
// cannot be coerced aborts with a *FieldBindingError.
func ParseWifi(uri string) (*Wifi, error) {
	w := NewWifi()
	if strings.TrimSpace(uri) == "" {
		return w, nil
	}

	w.params = ExtractParameters(uri)
	w.Name = w.params["name"]

	values, err := queryValues(uri)
	if err != nil {
		return nil, err
	}
	if err := bind(w, values, wifiBindings, strict); err != nil {
		return nil, err
	}

	return w, nil
}

// Kind implements Credential.
func (w *Wifi) Kind() Kind { return KindWifi }

// Parameters returns a copy of the raw parameters the credential was
// parsed from.
func (w *Wifi) Parameters() Parameters { return maps.Clone(w.params) }

// DisplayName implements Credential.
func (w *Wifi) DisplayName() string { return w.Name }

// Validate checks the Wi-Fi rules and reports all violations together.
func (w *Wifi) Validate() error {
	return validate(w, wifiRules)
}

// WifiString renders the WIFI: join string. It is not gated on Validate and
// performs no escaping of ';', ':' or ',' inside values. The password segment
// is omitted when the password is blank; the closing ';' is always written.
func (w *Wifi) WifiString() string {
	var b strings.Builder
	b.WriteString("WIFI:")
	b.WriteString("S:" + w.SSID + ";")
	b.WriteString("T:" + string(w.Security) + ";")
	if strings.TrimSpace(w.Password) != "" {
		b.WriteString("P:" + w.Password + ";")
	}
	b.WriteString(";")
	return b.String()
}

// Serialize implements Credential. It never fails.
func (w *Wifi) Serialize() (string, error) { return w.WifiString(), nil }

// Fields implements Credential.
func (w *Wifi) Fields() []InputDefinition {
	return []InputDefinition{
		{
			Name:            "SSID",
			Kind:            InputText,
			Placeholder:     w.SSID,
			Description:     "Network name exactly as broadcast.",
			ValidationRules: rulesFor("SSID", wifiRules),
		},
		{
			Name:            "Password",
			Kind:            InputText,
			Description:     "Leave empty for open networks.",
			ValidationRules: rulesFor("Password", wifiRules),
		},
		{
			Name:            "Security",
			Kind:            InputDropdown,
			Options:         enumNames(SecurityTypes()),
			ValidationRules: rulesFor("Security", wifiRules),
		},
	}
}

func (w *Wifi) bindFields(values map[string]string) error {
	return bind(w, valuesFromMap(values), wifiFieldBindings, strict)
}
