package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
)

// maxBodyBytes bounds request bodies; a QR code cannot hold more than a few
// kilobytes anyway.
const maxBodyBytes = 64 << 10

// Handler is the HTTP driving adapter that serves the REST API.
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

// RegisterAPIRoutes registers all REST API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/kinds/{kind}/fields", h.ListFields)
	mux.HandleFunc("POST /api/v1/codes", h.CreateCode)
	mux.HandleFunc("POST /api/v1/codes/validate", h.ValidateCode)
	mux.HandleFunc("GET /api/v1/codes", h.ListCodes)
	mux.HandleFunc("GET /api/v1/codes/{id}/png", h.GetCodePNG)
	mux.HandleFunc("DELETE /api/v1/codes/{id}", h.DeleteCode)
}

// ApplyMiddleware wraps handler with security header, recovery and logging
// middleware.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	// Recovery sits inside logging so a recovered panic is logged as a 500.
	wrapped := secureHeadersMiddleware(handler)
	wrapped = recoveryMiddleware(logger, wrapped)
	return loggingMiddleware(logger, wrapped)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListFields returns the input catalog for a credential kind.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	kind, err := credential.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown credential kind")
		return
	}

	defs, err := h.codes.Definitions(kind)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list fields")
		return
	}

	resp := make([]FieldResponse, 0, len(defs))
	for _, d := range defs {
		resp = append(resp, toFieldResponse(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateCode generates an enrollment string and its QR image. With
// ?format=png the raw image is returned instead of JSON.
func (h *Handler) CreateCode(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCodeRequest(w, r)
	if !ok {
		return
	}

	code, err := h.codes.Generate(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to generate code")
		return
	}

	if r.URL.Query().Get("format") == "png" {
		writePNG(w, code.PNG)
		return
	}

	writeJSON(w, http.StatusCreated, toRenderedResponse(code))
}

// ValidateCode reports whether a request would generate a code, without
// rendering or saving anything.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCodeRequest(w, r)
	if !ok {
		return
	}

	err := h.codes.Check(req)

	var verr *credential.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Errors: []string{}})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusOK, ValidateResponse{Errors: verr.Messages()})
	case errors.Is(err, credential.ErrFieldBinding), errors.Is(err, credential.ErrMalformedURI):
		writeJSON(w, http.StatusOK, ValidateResponse{Errors: []string{err.Error()}})
	default:
		writeServiceError(w, h.logger, err, "failed to validate code")
	}
}

// ListCodes returns the most recent generated codes.
func (h *Handler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.codes.History(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list codes")
		return
	}

	resp := make([]CodeResponse, 0, len(codes))
	for _, c := range codes {
		resp = append(resp, toCodeResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCodePNG re-renders a stored code as PNG.
func (h *Handler) GetCodePNG(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	code, err := h.codes.Render(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to render code")
		return
	}

	writePNG(w, code.PNG)
}

// DeleteCode removes a stored code.
func (h *Handler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.codes.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "failed to delete code")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeCodeRequest(w http.ResponseWriter, r *http.Request) (application.GenerateRequest, bool) {
	var body CodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return application.GenerateRequest{}, false
	}

	kind, err := credential.ParseKind(body.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown credential kind")
		return application.GenerateRequest{}, false
	}

	return application.GenerateRequest{
		Kind:   kind,
		URI:    body.URI,
		Name:   body.Name,
		Fields: body.Fields,
	}, true
}
