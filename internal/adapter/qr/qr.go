package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer rasterizes a finalized KHQR payload for the chat layer to send
// as an image.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderPNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render QR: %w", err)
	}
	return png, nil
}
