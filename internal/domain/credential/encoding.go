package credential

import (
	"encoding/base32"
	"net/mail"
	"strings"
)

// base32NoPad is the RFC 4648 standard alphabet without '=' padding.
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

const upperhex = "0123456789ABCDEF"

// escapeDataString percent-encodes every byte outside the RFC 3986 unreserved
// set, so a space becomes %20 rather than '+'.
func escapeDataString(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// isEmailAddress reports whether s is a bare mail address with no display
// name and no surrounding text.
func isEmailAddress(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" {
		return false
	}
	if addr.Address == s {
		return true
	}
	// Quoted local parts come back unquoted; compare against the rendered form.
	return strings.TrimSuffix(strings.TrimPrefix(addr.String(), "<"), ">") == s
}

// encodeAccountName leaves email addresses untouched and escapes anything else.
func encodeAccountName(name string) string {
	if name == "" {
		return ""
	}
	if isEmailAddress(name) {
		return name
	}
	return escapeDataString(name)
}

// normalizeSecret returns secret unchanged when it is already canonical
// unpadded base32, otherwise the base32 encoding of its UTF-8 bytes.
func normalizeSecret(secret string) string {
	if isCanonicalBase32(secret) {
		return secret
	}
	return base32NoPad.EncodeToString([]byte(secret))
}

// isCanonicalBase32 reports whether s decodes and encodes back to itself. The
// decoder alone accepts impossible lengths, non-zero trailing bits and
// embedded CR/LF.
func isCanonicalBase32(s string) bool {
	dec, err := base32NoPad.DecodeString(s)
	return err == nil && base32NoPad.EncodeToString(dec) == s
}
