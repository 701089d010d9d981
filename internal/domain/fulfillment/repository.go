package fulfillment

import (
	"context"
	"image/color"

	"github.com/google/uuid"
)

// OrderReader loads orders. Implementations return shared.ErrNotFound for
// unknown identifiers.
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
}

// UserReader loads the customers that placed orders
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserView, error)
}

// QrCodeReader loads QR code records
type QrCodeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*QrCodeView, error)
}

// SymbolEncoder renders text as a scannable 2D barcode raster (PNG bytes)
// of sizePx × sizePx pixels.
type SymbolEncoder interface {
	Encode(ctx context.Context, text string, sizePx int, foreground, background color.Color) ([]byte, error)
}
