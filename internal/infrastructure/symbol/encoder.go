// Package symbol encodes scan URLs as QR code rasters.
package symbol

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/domain/shared"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Pixel size bounds for a single symbol
const (
	MinSizePx = 21
	MaxSizePx = 4096
)

// RecoveryLevel is the QR error correction level
type RecoveryLevel string

const (
	RecoveryLow     RecoveryLevel = "LOW"
	RecoveryMedium  RecoveryLevel = "MEDIUM"
	RecoveryHigh    RecoveryLevel = "HIGH"
	RecoveryHighest RecoveryLevel = "HIGHEST"
)

func (l RecoveryLevel) qrLevel() (qrcode.RecoveryLevel, error) {
	switch RecoveryLevel(strings.ToUpper(string(l))) {
	case RecoveryLow:
		return qrcode.Low, nil
	case RecoveryMedium, "":
		return qrcode.Medium, nil
	case RecoveryHigh:
		return qrcode.High, nil
	case RecoveryHighest:
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown recovery level %q", l)
	}
}

// QRCodeEncoder implements fulfillment.SymbolEncoder with go-qrcode
type QRCodeEncoder struct {
	level  qrcode.RecoveryLevel
	logger *zap.Logger
}

// NewQRCodeEncoder creates a new encoder
func NewQRCodeEncoder(level RecoveryLevel, logger *zap.Logger) (*QRCodeEncoder, error) {
	qrLevel, err := level.qrLevel()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QRCodeEncoder{level: qrLevel, logger: logger}, nil
}

// Encode renders text as a sizePx × sizePx PNG. A nil color falls back to
// black foreground / white background.
func (e *QRCodeEncoder) Encode(ctx context.Context, text string, sizePx int, foreground, background color.Color) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewDomainError(shared.CodeEncodingFailed, "Symbol content is empty")
	}
	if sizePx < MinSizePx || sizePx > MaxSizePx {
		return nil, shared.NewDomainError(shared.CodeEncodingFailed,
			fmt.Sprintf("Symbol size %dpx is outside %d-%d", sizePx, MinSizePx, MaxSizePx))
	}

	qr, err := qrcode.New(text, e.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeEncodingFailed, "Failed to encode symbol"), err)
	}
	if foreground != nil {
		qr.ForegroundColor = foreground
	}
	if background != nil {
		qr.BackgroundColor = background
	}

	png, err := qr.PNG(sizePx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeEncodingFailed, "Failed to rasterize symbol"), err)
	}

	e.logger.Debug("Symbol encoded",
		zap.Int("size_px", sizePx),
		zap.Int("bytes", len(png)))
	return png, nil
}

// Ensure QRCodeEncoder implements fulfillment.SymbolEncoder
var _ fulfillment.SymbolEncoder = (*QRCodeEncoder)(nil)
