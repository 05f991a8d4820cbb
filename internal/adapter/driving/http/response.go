package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
	"github.com/ericfisherdev/qrcodegen/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps an error returned by CodeService onto a status code.
// Unclassified errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, msg string) {
	var verr *credential.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "invalid credential",
			Details: verr.Messages(),
		})
	case errors.Is(err, credential.ErrFieldBinding),
		errors.Is(err, credential.ErrMalformedURI),
		errors.Is(err, credential.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "generated code not found")
	case errors.Is(err, application.ErrHistoryDisabled),
		errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, "code history is disabled")
	default:
		logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writePNG writes raw image bytes. Codes may carry secrets, so responses are
// never cached.
func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CodeRequest is the JSON body for the generate and validate endpoints.
type CodeRequest struct {
	Kind   string            `json:"kind"`
	URI    string            `json:"uri"`
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

// FieldResponse is the JSON representation of one input definition.
type FieldResponse struct {
	Name            string         `json:"name"`
	Kind            string         `json:"kind"`
	Placeholder     string         `json:"placeholder"`
	Description     string         `json:"description"`
	Options         []string       `json:"options"`
	ValidationRules []RuleResponse `json:"validation_rules"`
}

// RuleResponse is the JSON representation of a validation rule.
type RuleResponse struct {
	Rule         string `json:"rule"`
	ErrorMessage string `json:"error_message"`
}

// CodeResponse is the JSON representation of a generated code. Image is only
// populated when the PNG was rendered in the same request.
type CodeResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Payload   string `json:"payload"`
	Image     string `json:"image,omitempty"`
	Saved     bool   `json:"saved"`
	CreatedAt string `json:"created_at"`
}

// ValidateResponse reports whether a request would generate a code.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// toFieldResponse converts an input definition to its JSON representation.
func toFieldResponse(d credential.InputDefinition) FieldResponse {
	options := d.Options
	if options == nil {
		options = []string{}
	}
	rules := make([]RuleResponse, 0, len(d.ValidationRules))
	for _, r := range d.ValidationRules {
		rules = append(rules, RuleResponse{Rule: r.Rule, ErrorMessage: r.ErrorMessage})
	}

	return FieldResponse{
		Name:            d.Name,
		Kind:            string(d.Kind),
		Placeholder:     d.Placeholder,
		Description:     d.Description,
		Options:         options,
		ValidationRules: rules,
	}
}

// toCodeResponse converts a stored history entry to its JSON representation.
func toCodeResponse(c model.GeneratedCode) CodeResponse {
	return CodeResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Name:      c.Name,
		Payload:   c.Payload,
		Saved:     true,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toRenderedResponse converts a freshly generated code, including its image.
func toRenderedResponse(c *application.RenderedCode) CodeResponse {
	resp := toCodeResponse(c.GeneratedCode)
	resp.Image = application.DataURI(c.PNG)
	resp.Saved = c.Saved
	return resp
}
