package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
	"github.com/ericfisherdev/qrcodegen/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CodeStore = (*CodeRepo)(nil)

// timeLayout has a fixed-width fraction so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CodeRepo is the SQLite implementation of the CodeStore port interface.
// Payloads are encrypted with AES-256-GCM before write and decrypted after read.
type CodeRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when history is disabled.
}

// NewCodeRepo creates a new CodeRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable history (reads and writes return ErrEncryptionKeyNotSet).
func NewCodeRepo(db *DB, key []byte) *CodeRepo {
	return &CodeRepo{db: db, key: key}
}

// Save inserts a new history entry.
func (r *CodeRepo) Save(ctx context.Context, code model.GeneratedCode) error {
	encrypted, err := r.encrypt(code.Payload)
	if err != nil {
		return err
	}

	createdAt := code.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	const query = `INSERT INTO generated_codes (id, kind, name, payload, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		code.ID, string(code.Kind), code.Name, encrypted, createdAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save generated code %q: %w", code.ID, err)
	}
	return nil
}

// Get returns the entry with the given ID, or (nil, nil) if it does not exist.
func (r *CodeRepo) Get(ctx context.Context, id string) (*model.GeneratedCode, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, kind, name, payload, created_at FROM generated_codes WHERE id = ?`
	code, err := r.scan(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get generated code %q: %w", id, err)
	}
	return &code, nil
}

// ListRecent returns at most limit entries ordered newest first.
func (r *CodeRepo) ListRecent(ctx context.Context, limit int) ([]model.GeneratedCode, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, kind, name, payload, created_at FROM generated_codes ORDER BY created_at DESC, id LIMIT ?`
	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list generated codes: %w", err)
	}
	defer rows.Close()

	codes := []model.GeneratedCode{}
	for rows.Next() {
		code, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generated codes: %w", err)
	}

	return codes, nil
}

// Delete removes the entry with the given ID.
func (r *CodeRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM generated_codes WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete generated code %q: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete generated code %q: %w", id, driven.ErrCodeNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CodeRepo) scan(row rowScanner) (model.GeneratedCode, error) {
	var (
		code      model.GeneratedCode
		kind      string
		encrypted string
		createdAt string
	)
	if err := row.Scan(&code.ID, &kind, &code.Name, &encrypted, &createdAt); err != nil {
		return model.GeneratedCode{}, err
	}
	code.Kind = credential.Kind(kind)

	payload, err := r.decrypt(encrypted)
	if err != nil {
		return model.GeneratedCode{}, fmt.Errorf("decrypt generated code %q: %w", code.ID, err)
	}
	code.Payload = payload

	code.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.GeneratedCode{}, fmt.Errorf("parse created_at for generated code %q: %w", code.ID, err)
	}

	return code, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CodeRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CodeRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CodeRepo) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// parseTime accepts the formats SQLite and this adapter write timestamps in.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
