package web

import (
	"strings"
	"time"

	vm "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
)

// formTitles maps each kind to its page heading.
var formTitles = map[credential.Kind]string{
	credential.KindOTP:  "One-time password",
	credential.KindWifi: "Wi-Fi network",
}

// codeFormPath returns the form route for kind.
func codeFormPath(kind credential.Kind) string {
	return "/codes/" + string(kind)
}

// toKindLinks builds the kind switcher with active marking the current kind.
func toKindLinks(active credential.Kind) []vm.KindLinkViewModel {
	kinds := credential.Kinds()
	links := make([]vm.KindLinkViewModel, 0, len(kinds))
	for _, k := range kinds {
		links = append(links, vm.KindLinkViewModel{
			Label:  formTitles[k],
			Path:   codeFormPath(k),
			Active: k == active,
		})
	}
	return links
}

// toFieldViewModel converts an input definition and the submitted value, if
// any, to a form field. Dropdowns select the submitted value or, failing
// that, their first option.
func toFieldViewModel(def credential.InputDefinition, value string) vm.FieldViewModel {
	field := vm.FieldViewModel{
		Name:            def.Name,
		InputKind:       string(def.Kind),
		Placeholder:     def.Placeholder,
		DescriptionHTML: RenderMarkdown(def.Description),
		Value:           value,
	}

	for _, r := range def.ValidationRules {
		if r.Rule == "required" {
			field.Required = true
		}
	}

	if len(def.Options) > 0 {
		field.Options = make([]vm.OptionViewModel, 0, len(def.Options))
		matched := false
		for _, opt := range def.Options {
			selected := !matched && strings.EqualFold(opt, value)
			matched = matched || selected
			field.Options = append(field.Options, vm.OptionViewModel{Value: opt, Selected: selected})
		}
		if !matched {
			field.Options[0].Selected = true
		}
	}

	return field
}

// toCodeFormViewModel assembles the form page for kind.
func toCodeFormViewModel(
	kind credential.Kind,
	defs []credential.InputDefinition,
	values map[string]string,
	csrf string,
) vm.CodeFormViewModel {
	fields := make([]vm.FieldViewModel, 0, len(defs))
	for _, d := range defs {
		fields = append(fields, toFieldViewModel(d, values[d.Name]))
	}

	return vm.CodeFormViewModel{
		Kind:       string(kind),
		Title:      formTitles[kind],
		ActionPath: codeFormPath(kind),
		CSRFToken:  csrf,
		Name:       values[nameField],
		Kinds:      toKindLinks(kind),
		Fields:     fields,
	}
}

// toResultViewModel converts a generated code for display.
func toResultViewModel(code *application.RenderedCode) *vm.ResultViewModel {
	return &vm.ResultViewModel{
		Name:         code.Name,
		Payload:      code.Payload,
		ImageDataURI: application.DataURI(code.PNG),
		Saved:        code.Saved,
	}
}

// toHistoryViewModels converts stored codes to list rows.
func toHistoryViewModels(codes []model.GeneratedCode) []vm.HistoryItemViewModel {
	items := make([]vm.HistoryItemViewModel, 0, len(codes))
	for _, c := range codes {
		name := c.Name
		if name == "" {
			name = "Untitled"
		}
		items = append(items, vm.HistoryItemViewModel{
			Name:      name,
			Kind:      strings.ToUpper(string(c.Kind)),
			CreatedAt: c.CreatedAt.Local().Format(time.DateTime),
			ImagePath: "/api/v1/codes/" + c.ID + "/png",
		})
	}
	return items
}
