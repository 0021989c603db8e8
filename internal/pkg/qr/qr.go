package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// Encoder renders a string as a scannable image.
type Encoder interface {
	PNG(content string) ([]byte, error)
}

type PNGEncoder struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewPNGEncoder renders square PNGs of size pixels with medium error recovery.
func NewPNGEncoder(size int) *PNGEncoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGEncoder{size: size, level: qrcode.Medium}
}

func (e *PNGEncoder) PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
