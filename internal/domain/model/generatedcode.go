package model

import (
	"time"

	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
)

// GeneratedCode is a history entry for a rendered enrollment string. Payload
// is the canonical otpauth:// or WIFI: string and may contain secrets.
type GeneratedCode struct {
	ID        string
	Kind      credential.Kind
	Name      string
	Payload   string
	CreatedAt time.Time
}
