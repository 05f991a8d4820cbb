package credential

// InputKind tells a form renderer which widget to draw for a field.
type InputKind string

const (
	InputText     InputKind = "text"
	InputCheckbox InputKind = "checkbox"
	InputDropdown InputKind = "dropdown"
	InputToggle   InputKind = "toggle"
)

// ValidationRule is the form-facing description of one field constraint.
type ValidationRule struct {
	Rule         string `json:"rule" yaml:"rule"`
	ErrorMessage string `json:"error_message" yaml:"error_message"`
}

// InputDefinition describes a single credential field for a form renderer.
// Description may contain markdown.
type InputDefinition struct {
	Name            string           `json:"name" yaml:"name"`
	Kind            InputKind        `json:"kind" yaml:"kind"`
	Placeholder     string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	Options         []string         `json:"options,omitempty" yaml:"options,omitempty"`
	ValidationRules []ValidationRule `json:"validation_rules" yaml:"validation_rules"`
}

func enumNames[E ~string](values []E) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, string(v))
	}
	return names
}
