package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
	"github.com/ericfisherdev/qrcodegen/internal/domain/model"
	"github.com/ericfisherdev/qrcodegen/internal/domain/port/driven"
)

// ErrHistoryDisabled is returned by history operations when the service was
// built without a code store.
var ErrHistoryDisabled = errors.New("code history is disabled")

// GenerateRequest describes a credential to encode. URI, when set, is parsed
// with the kind's binding policy first; Fields are then applied on top by
// public field name. A non-empty Name overrides any name carried by either.
type GenerateRequest struct {
	Kind   credential.Kind
	URI    string
	Fields map[string]string
	Name   string
}

// RenderedCode is a generated history entry together with its PNG image.
// Saved reports whether the entry was persisted.
type RenderedCode struct {
	model.GeneratedCode
	PNG   []byte
	Saved bool
}

// CodeService turns credential input into enrollment strings and QR images
// and keeps an optional history of what was generated.
type CodeService struct {
	rasterizer   driven.Rasterizer
	store        driven.CodeStore
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// NewCodeService creates a CodeService. store may be nil to disable history.
func NewCodeService(rasterizer driven.Rasterizer, store driven.CodeStore, historyLimit int, logger *slog.Logger) *CodeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CodeService{
		rasterizer:   rasterizer,
		store:        store,
		historyLimit: historyLimit,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// Definitions returns the input catalog for kind.
func (s *CodeService) Definitions(kind credential.Kind) ([]credential.InputDefinition, error) {
	c, err := credential.New(kind)
	if err != nil {
		return nil, err
	}
	return c.Fields(), nil
}

// Build parses and binds req into a credential without validating it.
func (s *CodeService) Build(req GenerateRequest) (credential.Credential, error) {
	var (
		c   credential.Credential
		err error
	)
	if strings.TrimSpace(req.URI) != "" {
		c, err = credential.Parse(req.Kind, req.URI)
	} else {
		c, err = credential.New(req.Kind)
	}
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(req.Fields)+1)
	for k, v := range req.Fields {
		values[k] = v
	}
	if req.Name != "" {
		values["Name"] = req.Name
	}
	if err := credential.Assign(c, values); err != nil {
		return nil, err
	}
	return c, nil
}

// Check builds and validates req. It returns nil when req would generate.
func (s *CodeService) Check(req GenerateRequest) error {
	c, err := s.Build(req)
	if err != nil {
		return err
	}
	return c.Validate()
}

// Generate builds, validates, serializes and rasterizes req. The entry is
// saved when history is enabled; a failed save is logged and does not fail
// the generation.
func (s *CodeService) Generate(ctx context.Context, req GenerateRequest) (*RenderedCode, error) {
	c, err := s.Build(req)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	payload, err := c.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", c.Kind(), err)
	}

	png, err := s.rasterizer.Render(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Kind(), err)
	}

	out := &RenderedCode{
		GeneratedCode: model.GeneratedCode{
			ID:        s.newID(),
			Kind:      c.Kind(),
			Name:      c.DisplayName(),
			Payload:   payload,
			CreatedAt: s.now(),
		},
		PNG: png,
	}

	s.logger.Debug("generated code", "id", out.ID, "summary", credential.Describe(c))

	if s.store == nil {
		return out, nil
	}
	switch err := s.store.Save(ctx, out.GeneratedCode); {
	case err == nil:
		out.Saved = true
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		s.logger.Debug("history not saved", "reason", err)
	default:
		s.logger.Error("failed to save generated code", "id", out.ID, "error", err)
	}
	return out, nil
}

// Render re-rasterizes a stored entry.
func (s *CodeService) Render(ctx context.Context, id string) (*RenderedCode, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	code, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get code %s: %w", id, err)
	}
	if code == nil {
		return nil, driven.ErrCodeNotFound
	}

	png, err := s.rasterizer.Render(ctx, code.Payload)
	if err != nil {
		return nil, fmt.Errorf("render code %s: %w", id, err)
	}
	return &RenderedCode{GeneratedCode: *code, PNG: png, Saved: true}, nil
}

// History lists the most recent entries, newest first.
func (s *CodeService) History(ctx context.Context) ([]model.GeneratedCode, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	codes, err := s.store.ListRecent(ctx, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return codes, nil
}

// Delete removes a stored entry.
func (s *CodeService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrHistoryDisabled
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete code %s: %w", id, err)
	}
	return nil
}

// DataURI embeds png in a data: URI for inline <img> tags.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
