package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httphandler "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/http"
	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
	"github.com/ericfisherdev/qrcodegen/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRasterizer struct{}

func (mockRasterizer) Render(_ context.Context, text string) ([]byte, error) {
	return []byte("PNG:" + text), nil
}

type mockCodeStore struct {
	codes   map[string]model.GeneratedCode
	order   []string
	listErr error
	saveErr error
}

func newMockCodeStore() *mockCodeStore {
	return &mockCodeStore{codes: make(map[string]model.GeneratedCode)}
}

func (m *mockCodeStore) Save(_ context.Context, code model.GeneratedCode) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.codes[code.ID] = code
	m.order = append(m.order, code.ID)
	return nil
}

func (m *mockCodeStore) Get(_ context.Context, id string) (*model.GeneratedCode, error) {
	code, ok := m.codes[id]
	if !ok {
		return nil, nil
	}
	return &code, nil
}

func (m *mockCodeStore) ListRecent(_ context.Context, limit int) ([]model.GeneratedCode, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.GeneratedCode{}
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		if code, ok := m.codes[m.order[i]]; ok {
			out = append(out, code)
		}
	}
	return out, nil
}

func (m *mockCodeStore) Delete(_ context.Context, id string) error {
	if _, ok := m.codes[id]; !ok {
		return driven.ErrCodeNotFound
	}
	delete(m.codes, id)
	return nil
}

var _ driven.CodeStore = (*mockCodeStore)(nil)

// setupMux creates a mux backed by a real CodeService. store may be nil to
// disable history.
func setupMux(store driven.CodeStore) http.Handler {
	svc := application.NewCodeService(mockRasterizer{}, store, 50, slog.Default())
	h := httphandler.NewHandler(svc, slog.Default())
	return httphandler.NewServeMux(h, slog.Default())
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

func postJSON(mux http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validOTPBody = `{"kind":"otp","name":"laptop","fields":{"AccountName":"alice@example.com","Issuer":"ExampleCo","Secret":"JBSWY3DPEHPK3PXP"}}`

// --- Tests ---

func TestHealth(t *testing.T) {
	mux := setupMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["time"])
}

func TestListFields(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		wantStatus int
		wantNames  []string
	}{
		{
			name:       "otp",
			kind:       "otp",
			wantStatus: http.StatusOK,
			wantNames:  []string{"AccountName", "Issuer", "Secret", "Type", "Algorithm", "Digits", "Period", "Counter"},
		},
		{
			name:       "wifi case-insensitive",
			kind:       "WiFi",
			wantStatus: http.StatusOK,
			wantNames:  []string{"SSID", "Password", "Security"},
		},
		{
			name:       "unknown kind",
			kind:       "vcard",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(nil)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/kinds/"+tt.kind+"/fields", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp []httphandler.FieldResponse
			decodeJSON(t, rec, &resp)
			names := make([]string, 0, len(resp))
			for _, f := range resp {
				names = append(names, f.Name)
				assert.NotNil(t, f.Options)
				assert.NotNil(t, f.ValidationRules)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestListFields_RulesAndOptions(t *testing.T) {
	mux := setupMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/kinds/wifi/fields", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []httphandler.FieldResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 3)

	assert.Equal(t, []httphandler.RuleResponse{{Rule: "required", ErrorMessage: "SSID is required."}}, resp[0].ValidationRules)
	assert.Equal(t, []string{"WPA", "WEP", "None"}, resp[2].Options)
	assert.Equal(t, "dropdown", resp[2].Kind)
}

func TestCreateCode(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantPayload string
		wantError   string
		wantDetails []any
	}{
		{
			name:        "otp from fields",
			body:        validOTPBody,
			wantStatus:  http.StatusCreated,
			wantPayload: "otpauth://totp/ExampleCo:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=ExampleCo&algorithm=SHA1&digits=6&period=30",
		},
		{
			name:        "otp from legacy uri",
			body:        `{"kind":"otp","uri":"https://x/?applicationName=Acme&otpSeed=JBSWY3DPEHPK3PXP&accountName=bob&type=hotp&counter=3"}`,
			wantStatus:  http.StatusCreated,
			wantPayload: "otpauth://hotp/Acme:bob?secret=JBSWY3DPEHPK3PXP&issuer=Acme&algorithm=SHA1&digits=6&period=30&counter=3",
		},
		{
			name:        "wifi",
			body:        `{"kind":"wifi","fields":{"SSID":"Home","Password":"pw"}}`,
			wantStatus:  http.StatusCreated,
			wantPayload: "WIFI:S:Home;T:WPA;P:pw;;",
		},
		{
			name:        "otp missing fields",
			body:        `{"kind":"otp"}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantError:   "invalid credential",
			wantDetails: []any{"AccountName is required.", "Issuer is required.", "Secret is required."},
		},
		{
			name:       "wifi bad security",
			body:       `{"kind":"wifi","uri":"x?SSID=Home&Security=WPA3"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  `error setting field "Security" to value "WPA3": invalid value "WPA3" for credential.Security`,
		},
		{
			name:       "unknown kind",
			body:       `{"kind":"sms"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown credential kind",
		},
		{
			name:       "invalid JSON",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(setupMux(newMockCodeStore()), "/api/v1/codes", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]any
			decodeJSON(t, rec, &resp)

			if tt.wantPayload != "" {
				assert.Equal(t, tt.wantPayload, resp["payload"])
				assert.NotEmpty(t, resp["id"])
				assert.Equal(t, true, resp["saved"])
				assert.True(t, strings.HasPrefix(resp["image"].(string), "data:image/png;base64,"))
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, resp["details"])
			}
		})
	}
}

func TestCreateCode_PNGFormat(t *testing.T) {
	rec := postJSON(setupMux(nil), "/api/v1/codes?format=png", `{"kind":"wifi","fields":{"SSID":"Home"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "PNG:WIFI:S:Home;T:WPA;;", rec.Body.String())
}

func TestCreateCode_NameOverride(t *testing.T) {
	rec := postJSON(setupMux(nil), "/api/v1/codes", validOTPBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp httphandler.CodeResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "laptop", resp.Name)
	assert.Equal(t, "otp", resp.Kind)
	assert.False(t, resp.Saved)
	_, err := time.Parse(time.RFC3339, resp.CreatedAt)
	assert.NoError(t, err)
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantValid  bool
		wantErrors []string
	}{
		{
			name:       "valid",
			body:       validOTPBody,
			wantStatus: http.StatusOK,
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "range violation",
			body:       `{"kind":"otp","fields":{"AccountName":"a","Issuer":"b","Secret":"c","Digits":"0"}}`,
			wantStatus: http.StatusOK,
			wantErrors: []string{"Digits must be greater than 0."},
		},
		{
			name:       "wifi without ssid",
			body:       `{"kind":"wifi"}`,
			wantStatus: http.StatusOK,
			wantErrors: []string{"SSID is required."},
		},
		{
			name:       "binding error",
			body:       `{"kind":"otp","fields":{"Digits":"six"}}`,
			wantStatus: http.StatusOK,
			wantErrors: []string{`error setting field "Digits" to value "six": strconv.ParseInt: parsing "six": invalid syntax`},
		},
		{
			name:       "unknown kind",
			body:       `{"kind":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockCodeStore()
			rec := postJSON(setupMux(store), "/api/v1/codes/validate", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, store.codes)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp httphandler.ValidateResponse
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantValid, resp.Valid)
			assert.Equal(t, tt.wantErrors, resp.Errors)
		})
	}
}

func TestHistoryEndpoints(t *testing.T) {
	store := newMockCodeStore()
	mux := setupMux(store)

	rec := postJSON(mux, "/api/v1/codes", `{"kind":"wifi","name":"guest","fields":{"SSID":"Guest"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created httphandler.CodeResponse
	decodeJSON(t, rec, &created)

	// List.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/codes", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []httphandler.CodeResponse
	decodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "guest", list[0].Name)
	assert.Equal(t, "WIFI:S:Guest;T:WPA;;", list[0].Payload)
	assert.Empty(t, list[0].Image)

	// PNG.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/codes/"+created.ID+"/png", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "PNG:WIFI:S:Guest;T:WPA;;", rec.Body.String())

	// Delete.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/codes/"+created.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Gone.
	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/codes/"+created.ID+"/png", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/codes/"+created.ID, nil),
	} {
		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNotFound, rec.Code, r.Method)
	}
}

func TestHistoryEndpoints_Disabled(t *testing.T) {
	tests := []struct {
		name  string
		store driven.CodeStore
	}{
		{name: "no store", store: nil},
		{name: "no encryption key", store: &mockCodeStore{codes: map[string]model.GeneratedCode{}, listErr: driven.ErrEncryptionKeyNotSet}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(tt.store)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/codes", nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			var resp map[string]any
			decodeJSON(t, rec, &resp)
			assert.Equal(t, "code history is disabled", resp["error"])
		})
	}
}

func TestListCodes_StoreError(t *testing.T) {
	store := newMockCodeStore()
	store.listErr = errors.New("database is locked")
	mux := setupMux(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/codes", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["error"])
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["error"])
}
