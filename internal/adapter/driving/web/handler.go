// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/qrcodegen/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
)

// nameField is the form field carrying the optional label.
const nameField = "Name"

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	codes  *application.CodeService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(codes *application.CodeService, logger *slog.Logger) *Handler {
	return &Handler{
		codes:  codes,
		logger: logger,
	}
}

// Index redirects to the OTP form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, codeFormPath(credential.KindOTP), http.StatusSeeOther)
}

// CodeForm renders an empty form for the kind in the path.
func (h *Handler) CodeForm(w http.ResponseWriter, r *http.Request) {
	kind, err := credential.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	defs, err := h.codes.Definitions(kind)
	if err != nil {
		h.logger.Error("failed to load field definitions", "kind", kind, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := toCodeFormViewModel(kind, defs, nil, csrfToken(w, r))
	h.render(w, r, http.StatusOK, page)
}

// GenerateCode handles the form submission and renders the form again with
// either the generated code or the errors that prevented it.
func (h *Handler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	kind, err := credential.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	defs, err := h.codes.Definitions(kind)
	if err != nil {
		h.logger.Error("failed to load field definitions", "kind", kind, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	values := formValues(r, defs)
	page := toCodeFormViewModel(kind, defs, values, csrfToken(w, r))

	code, err := h.codes.Generate(r.Context(), application.GenerateRequest{
		Kind:   kind,
		Fields: values,
	})

	var verr *credential.ValidationError
	switch {
	case err == nil:
		page.Result = toResultViewModel(code)
		h.render(w, r, http.StatusOK, page)
	case errors.As(err, &verr):
		page.Errors = verr.Messages()
		h.render(w, r, http.StatusUnprocessableEntity, page)
	case errors.Is(err, credential.ErrFieldBinding):
		page.Errors = []string{err.Error()}
		h.render(w, r, http.StatusBadRequest, page)
	default:
		h.logger.Error("failed to generate code", "kind", kind, "error", err)
		page.Errors = []string{"Could not generate the QR code."}
		h.render(w, r, http.StatusInternalServerError, page)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.CodeFormViewModel) {
	page.History = h.history(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	layout := templates.Layout(page.Title+" QR code", templates.CodeForm(page))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render code form", "kind", page.Kind, "error", err)
	}
}

// history loads recent codes for the sidebar. History is optional, so
// failures only hide the list.
func (h *Handler) history(r *http.Request) []vm.HistoryItemViewModel {
	codes, err := h.codes.History(r.Context())
	if err != nil {
		if !errors.Is(err, application.ErrHistoryDisabled) {
			h.logger.Debug("history unavailable", "error", err)
		}
		return nil
	}
	return toHistoryViewModels(codes)
}

// formValues collects the submitted field values. Blank inputs are dropped
// so that the credential keeps its defaults for them.
func formValues(r *http.Request, defs []credential.InputDefinition) map[string]string {
	values := make(map[string]string, len(defs)+1)
	for _, name := range append([]string{nameField}, fieldNames(defs)...) {
		if v := r.PostFormValue(name); v != "" {
			values[name] = v
		}
	}
	return values
}

func fieldNames(defs []credential.InputDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}
