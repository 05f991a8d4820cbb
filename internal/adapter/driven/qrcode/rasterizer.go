// Package qrcode implements the Rasterizer port with github.com/skip2/go-qrcode.
package qrcode

import (
	"context"
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/ericfisherdev/qrcodegen/internal/domain/port/driven"
)

// Defaults used by the original enrollment UI.
const (
	DefaultLevel = goqrcode.High // error-correction level Q (~25%)
	DefaultScale = 20
)

// Compile-time interface satisfaction check.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// Rasterizer renders text as a PNG QR code. Every module is drawn as a
// scale×scale pixel square, so the image size grows with the payload.
type Rasterizer struct {
	level goqrcode.RecoveryLevel
	scale int
}

// NewRasterizer creates a Rasterizer. A non-positive scale falls back to DefaultScale.
func NewRasterizer(level goqrcode.RecoveryLevel, scale int) *Rasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Rasterizer{level: level, scale: scale}
}

// ParseLevel maps the conventional L/M/Q/H names onto go-qrcode recovery levels.
func ParseLevel(s string) (goqrcode.RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return goqrcode.Low, nil
	case "M":
		return goqrcode.Medium, nil
	case "Q", "":
		return goqrcode.High, nil
	case "H":
		return goqrcode.Highest, nil
	}
	return 0, fmt.Errorf("unknown error-correction level %q", s)
}

// Render encodes text and returns the PNG bytes.
func (r *Rasterizer) Render(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := goqrcode.New(text, r.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	// A negative size tells go-qrcode to use a fixed number of pixels per module.
	png, err := q.PNG(-r.scale)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}

	return png, nil
}
