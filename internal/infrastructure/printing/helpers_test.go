package printing

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testSymbolPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testOrder(quantity int, address string) *fulfillment.OrderView {
	userID := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	return &fulfillment.OrderView{
		ID:              uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6"),
		UserID:          &userID,
		QrCodeID:        uuid.MustParse("99999999-8888-4777-8666-555555555555"),
		Quantity:        quantity,
		ShippingAddress: address,
		Total:           decimal.RequireFromString("59.9"),
		Status:          "PAID",
		CreatedAt:       time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC),
	}
}

func testUser() *fulfillment.UserView {
	return &fulfillment.UserView{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines Ltd",
	}
}

func testQrCode() *fulfillment.QrCodeView {
	return &fulfillment.QrCodeView{
		ID:        uuid.MustParse("99999999-8888-4777-8666-555555555555"),
		Name:      "Cafe Menu",
		ShortCode: "menu01",
	}
}

func countOps[T Op](doc *Document) int {
	n := 0
	for _, p := range doc.Pages {
		for _, o := range p.Ops {
			if _, ok := o.(T); ok {
				n++
			}
		}
	}
	return n
}

func countText(texts []string, want string) int {
	n := 0
	for _, s := range texts {
		if s == want {
			n++
		}
	}
	return n
}
