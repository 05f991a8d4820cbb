package driven

import "context"

// Rasterizer defines the driven port that turns an enrollment string into a
// PNG image of a QR code.
type Rasterizer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}
