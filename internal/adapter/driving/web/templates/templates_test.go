package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/qrcodegen/internal/adapter/driving/web/viewmodel"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout_WrapsBody(t *testing.T) {
	body := templ.Raw("<p>inner</p>")

	got := renderString(t, Layout("Wi-Fi <QR>", body))

	assert.Contains(t, got, "<!doctype html>")
	assert.Contains(t, got, "<title>Wi-Fi &lt;QR&gt;</title>")
	assert.Contains(t, got, `<main class="container"><p>inner</p></main>`)
}

func TestCodeForm_Fields(t *testing.T) {
	page := vm.CodeFormViewModel{
		Title:      "Wi-Fi",
		ActionPath: "/codes/wifi",
		CSRFToken:  "tok",
		Kinds: []vm.KindLinkViewModel{
			{Label: "OTP", Path: "/codes/otp"},
			{Label: "Wi-Fi", Path: "/codes/wifi", Active: true},
		},
		Fields: []vm.FieldViewModel{
			{Name: "SSID", InputKind: "text", Value: `a"b`, Required: true},
			{
				Name:      "Security",
				InputKind: "dropdown",
				Options:   []vm.OptionViewModel{{Value: "WPA"}, {Value: "WEP", Selected: true}},
			},
			{Name: "Hidden", InputKind: "checkbox", Value: "true", DescriptionHTML: "<em>optional</em>"},
		},
	}

	got := renderString(t, CodeForm(page))

	assert.Contains(t, got, `<a href="/codes/otp">OTP</a><a href="/codes/wifi" class="active" aria-current="page">Wi-Fi</a>`)
	assert.Contains(t, got, `<form method="post" action="/codes/wifi">`)
	assert.Contains(t, got, `name="csrf_token" value="tok"`)
	assert.Contains(t, got, `name="SSID" placeholder="" value="a&#34;b" required>`)
	assert.Contains(t, got, `<abbr title="required">*</abbr>`)
	assert.Contains(t, got, `<option value="WPA">WPA</option><option value="WEP" selected>WEP</option>`)
	assert.Contains(t, got, `<input type="checkbox" name="Hidden" value="true" checked>`)
	assert.Contains(t, got, `<small class="description"><em>optional</em></small>`)
	assert.NotContains(t, got, `class="errors"`)
	assert.NotContains(t, got, `class="result"`)
	assert.NotContains(t, got, `class="history"`)
}

func TestCodeForm_UnsafeLinkIsSanitized(t *testing.T) {
	page := vm.CodeFormViewModel{
		ActionPath: "javascript:alert(1)",
		Kinds:      []vm.KindLinkViewModel{{Label: "x", Path: "javascript:alert(1)"}},
	}

	got := renderString(t, CodeForm(page))

	assert.NotContains(t, got, "javascript:")
	assert.Contains(t, got, string(templ.FailedSanitizationURL))
}

func TestCodeForm_ErrorsResultAndHistory(t *testing.T) {
	page := vm.CodeFormViewModel{
		Errors: []string{"SSID is required.", "<b>"},
		Result: &vm.ResultViewModel{
			Name:         "Guest",
			Payload:      "WIFI:S:Home;T:WPA;;",
			ImageDataURI: "data:image/png;base64,AAAA",
		},
		History: []vm.HistoryItemViewModel{
			{Name: "Office", Kind: "WIFI", CreatedAt: "2026-01-02 03:04", ImagePath: "/api/v1/codes/a1/png"},
		},
	}

	got := renderString(t, CodeForm(page))

	assert.Contains(t, got, `<ul class="errors" role="alert"><li>SSID is required.</li><li>&lt;b&gt;</li></ul>`)
	assert.Contains(t, got, `<h2>Guest</h2><img alt="QR code" src="data:image/png;base64,AAAA">`)
	assert.Contains(t, got, `<pre class="payload">WIFI:S:Home;T:WPA;;</pre>`)
	assert.Contains(t, got, "Not saved to history.")
	assert.Contains(t, got, `src="/api/v1/codes/a1/png"> <span class="name">Office</span> <span class="kind">WIFI</span> <time>2026-01-02 03:04</time>`)
}
