package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("OTP")
	require.NoError(t, err)
	assert.Equal(t, KindOTP, k)

	k, err = ParseKind("wifi")
	require.NoError(t, err)
	assert.Equal(t, KindWifi, k)

	_, err = ParseKind("sms")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds() {
		c, err := New(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, c.Kind())
	}

	_, err := New("vcard")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParse_Dispatch(t *testing.T) {
	c, err := Parse(KindOTP, "otpauth://x?type=HOTP")
	require.NoError(t, err)
	assert.Equal(t, HOTP, c.(*OTP).Type)

	c, err = Parse(KindWifi, "wifi://x?SSID=Net")
	require.NoError(t, err)
	assert.Equal(t, "Net", c.(*Wifi).SSID)

	c, err = Parse(KindWifi, "wifi://x?Security=nope")
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestAssign_OTP(t *testing.T) {
	c := NewOTP()

	err := Assign(c, map[string]string{
		"Issuer":      "ACME Co",
		"AccountName": "john.doe@email.com",
		"Secret":      testSecret,
		"Type":        "hotp",
		"Counter":     "3",
		"Unknown":     "ignored",
	})

	require.NoError(t, err)
	got, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t,
		"otpauth://hotp/ACME%20Co:john.doe@email.com?secret=HXDMVJECJJWSRB3HWIZR4IFUGFTMXBOZ&issuer=ACME%20Co&algorithm=SHA1&digits=6&period=30&counter=3",
		got)
}

func TestAssign_RejectsBadValues(t *testing.T) {
	err := Assign(NewOTP(), map[string]string{"Digits": "six"})

	var berr *FieldBindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "Digits", berr.Key)
	assert.ErrorIs(t, err, ErrFieldBinding)
}

func TestAssign_Wifi(t *testing.T) {
	w := NewWifi()

	err := Assign(w, map[string]string{"SSID": "Net", "Security": "none", "Name": "Guest"})

	require.NoError(t, err)
	assert.Equal(t, NoSecurity, w.Security)
	assert.Equal(t, "Guest", w.Name)
	assert.Equal(t, "WIFI:S:Net;T:None;;", w.WifiString())
}

func TestDescribe(t *testing.T) {
	w, err := ParseWifi("wifi://x?SSID=Net&name=Lobby")
	require.NoError(t, err)

	assert.Equal(t, "QR Code Type: WIFI, Name: Lobby, Parameters: [SSID, Net], [name, Lobby]", Describe(w))
}
