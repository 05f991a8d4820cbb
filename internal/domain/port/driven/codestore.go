// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CodeStore operations when
// QRCODEGEN_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set QRCODEGEN_SECRET_KEY")

// ErrCodeNotFound indicates the requested history entry does not exist.
var ErrCodeNotFound = errors.New("generated code not found")

// CodeStore defines the driven port for the generated code history. Payloads
// hold credential secrets, so the adapter is responsible for encrypting them
// at rest; this interface operates on plaintext at the domain boundary.
type CodeStore interface {
	// Save stores a new history entry. Returns ErrEncryptionKeyNotSet if the
	// adapter was constructed without an encryption key.
	Save(ctx context.Context, code model.GeneratedCode) error

	// Get returns the entry with the given ID, or (nil, nil) if none exists.
	Get(ctx context.Context, id string) (*model.GeneratedCode, error)

	// ListRecent returns at most limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.GeneratedCode, error)

	// Delete removes the entry with the given ID. Returns ErrCodeNotFound if
	// it does not exist.
	Delete(ctx context.Context, id string) error
}
