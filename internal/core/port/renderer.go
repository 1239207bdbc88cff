package port

// QRRenderer turns a finalized payload string into a scannable image.
// The core never inspects the image bytes.
type QRRenderer interface {
	RenderPNG(payload string, size int) ([]byte, error)
}
