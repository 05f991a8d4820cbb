package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
)

type stubRasterizer struct{}

func (stubRasterizer) Render(_ context.Context, text string) ([]byte, error) {
	return []byte(text), nil
}

type stubCodeStore struct {
	codes []model.GeneratedCode
}

func (s *stubCodeStore) Save(_ context.Context, code model.GeneratedCode) error {
	s.codes = append(s.codes, code)
	return nil
}

func (s *stubCodeStore) Get(context.Context, string) (*model.GeneratedCode, error) {
	return nil, nil
}

func (s *stubCodeStore) ListRecent(context.Context, int) ([]model.GeneratedCode, error) {
	return s.codes, nil
}

func (s *stubCodeStore) Delete(context.Context, string) error { return nil }

func setupWebMux(store *stubCodeStore) *http.ServeMux {
	var svc *application.CodeService
	if store == nil {
		svc = application.NewCodeService(stubRasterizer{}, nil, 10, slog.Default())
	} else {
		svc = application.NewCodeService(stubRasterizer{}, store, 10, slog.Default())
	}
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(svc, slog.Default()))
	return mux
}

func postForm(mux http.Handler, path string, form url.Values, token string) *httptest.ResponseRecorder {
	if token != "" {
		form.Set(csrfFormField, token)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIndex_RedirectsToOTPForm(t *testing.T) {
	mux := setupWebMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/codes/otp", rec.Header().Get("Location"))
}

func TestCodeForm_RendersFields(t *testing.T) {
	mux := setupWebMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/codes/otp", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for _, name := range []string{"Name", "AccountName", "Issuer", "Secret", "Type", "Algorithm", "Digits", "Period", "Counter"} {
		assert.Contains(t, body, `name="`+name+`"`)
	}
	assert.Contains(t, body, `<option value="TOTP" selected>TOTP</option>`)
	assert.Contains(t, body, "<strong>base32</strong>")
	assert.Contains(t, body, `<a href="/codes/otp" class="active"`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, body, `name="csrf_token" value="`+cookies[0].Value+`"`)
}

func TestCodeForm_ReusesExistingToken(t *testing.T) {
	mux := setupWebMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/codes/wifi", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing"})
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Contains(t, rec.Body.String(), `value="existing"`)
}

func TestCodeForm_UnknownKind(t *testing.T) {
	mux := setupWebMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/codes/vcard", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateCode_RequiresCSRF(t *testing.T) {
	mux := setupWebMux(nil)

	rec := postForm(mux, "/codes/wifi", url.Values{"SSID": {"Home"}}, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateCode_MismatchedCSRF(t *testing.T) {
	mux := setupWebMux(nil)
	form := url.Values{"SSID": {"Home"}, csrfFormField: {"forged"}}
	req := httptest.NewRequest(http.MethodPost, "/codes/wifi", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "real"})
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateCode_Success(t *testing.T) {
	store := &stubCodeStore{}
	mux := setupWebMux(store)

	rec := postForm(mux, "/codes/wifi", url.Values{
		"Name":     {"Guest <net>"},
		"SSID":     {"Home"},
		"Password": {"pw"},
		"Security": {"WEP"},
	}, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<pre class="payload">WIFI:S:Home;T:WEP;P:pw;;</pre>`)
	assert.Contains(t, body, `src="data:image/png;base64,`)
	assert.Contains(t, body, "Guest &lt;net&gt;")
	assert.Contains(t, body, `<option value="WEP" selected>WEP</option>`)
	assert.NotContains(t, body, "Not saved to history.")

	require.Len(t, store.codes, 1)
	assert.Equal(t, "Guest <net>", store.codes[0].Name)
	assert.Contains(t, body, `src="/api/v1/codes/`+store.codes[0].ID+`/png"`)
}

func TestGenerateCode_ValidationErrors(t *testing.T) {
	mux := setupWebMux(nil)

	rec := postForm(mux, "/codes/otp", url.Values{"Issuer": {"ACME"}, "Digits": {"0"}}, "tok")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<li>AccountName is required.</li>")
	assert.Contains(t, body, "<li>Secret is required.</li>")
	assert.Contains(t, body, "<li>Digits must be greater than 0.</li>")
	assert.NotContains(t, body, "Issuer is required.")
	assert.Contains(t, body, `name="Issuer" placeholder="ACME Co" value="ACME"`)
	assert.NotContains(t, body, `class="result"`)
}

func TestGenerateCode_BindingError(t *testing.T) {
	mux := setupWebMux(nil)

	rec := postForm(mux, "/codes/otp", url.Values{"Period": {"soon"}}, "tok")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error setting field &#34;Period&#34;")
}

func TestStaticAssets(t *testing.T) {
	mux := setupWebMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".container")
}

func TestToFieldViewModel_Dropdown(t *testing.T) {
	def := credential.InputDefinition{
		Name:    "Security",
		Kind:    credential.InputDropdown,
		Options: []string{"WPA", "WEP", "None"},
	}

	tests := []struct {
		name  string
		value string
		want  []bool
	}{
		{name: "no value selects first", value: "", want: []bool{true, false, false}},
		{name: "exact match", value: "None", want: []bool{false, false, true}},
		{name: "case-insensitive match", value: "wep", want: []bool{false, true, false}},
		{name: "unknown falls back to first", value: "WPA3", want: []bool{true, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toFieldViewModel(def, tt.value)
			selected := make([]bool, 0, len(got.Options))
			for _, o := range got.Options {
				selected = append(selected, o.Selected)
			}
			assert.Equal(t, tt.want, selected)
		})
	}
}

func TestToFieldViewModel_Required(t *testing.T) {
	w := credential.NewWifi()
	defs := w.Fields()

	assert.True(t, toFieldViewModel(defs[0], "").Required)
	assert.False(t, toFieldViewModel(defs[1], "").Required)
}

func TestToHistoryViewModels(t *testing.T) {
	items := toHistoryViewModels([]model.GeneratedCode{
		{ID: "a1", Kind: credential.KindWifi, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "b2", Kind: credential.KindOTP, Name: "laptop"},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "Untitled", items[0].Name)
	assert.Equal(t, "WIFI", items[0].Kind)
	assert.Equal(t, "/api/v1/codes/a1/png", items[0].ImagePath)
	assert.Equal(t, "laptop", items[1].Name)
}
