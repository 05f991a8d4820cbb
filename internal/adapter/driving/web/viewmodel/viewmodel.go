// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// KindLinkViewModel is one entry of the credential kind switcher.
type KindLinkViewModel struct {
	Label  string
	Path   string
	Active bool
}

// OptionViewModel is one choice of a dropdown field.
type OptionViewModel struct {
	Value    string
	Selected bool
}

// FieldViewModel holds presentation-ready data for one form input.
// DescriptionHTML is already sanitized.
type FieldViewModel struct {
	Name            string
	InputKind       string
	Placeholder     string
	DescriptionHTML string
	Value           string
	Required        bool
	Options         []OptionViewModel
}

// ResultViewModel holds a freshly generated code.
type ResultViewModel struct {
	Name         string
	Payload      string
	ImageDataURI string
	Saved        bool
}

// HistoryItemViewModel is one row of the recent codes list.
type HistoryItemViewModel struct {
	Name      string
	Kind      string
	CreatedAt string
	ImagePath string
}

// CodeFormViewModel holds everything the code form page renders.
type CodeFormViewModel struct {
	Kind       string
	Title      string
	ActionPath string
	CSRFToken  string
	Name       string
	Kinds      []KindLinkViewModel
	Fields     []FieldViewModel
	Errors     []string
	Result     *ResultViewModel
	History    []HistoryItemViewModel
}
