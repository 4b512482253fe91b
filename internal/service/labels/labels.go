// Package labels renders the QR codes printed on item labels and user badges.
package labels

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// ClampSize keeps a requested pixel size within printable bounds. Zero means default.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}

// ItemPNG renders the "ITEM|<code>" payload.
func ItemPNG(code string, size int) ([]byte, error) {
	return render(models.EncodeItem(code), size)
}

// UserPNG renders the "USER|<id>" payload.
func UserPNG(id string, size int) ([]byte, error) {
	return render(models.EncodeUser(id), size)
}

func render(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("encode qr %q: %w", payload, err)
	}
	return png, nil
}
