package printing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeSheet(t *testing.T, quantity int) *Document {
	t.Helper()
	plan, err := fulfillment.PlanLayout(quantity)
	require.NoError(t, err)

	doc, err := NewOrderSheetComposer().Compose(&OrderSheet{
		Plan:   plan,
		Order:  testOrder(quantity, "742 Evergreen Terrace, Springfield, OR 97403"),
		User:   testUser(),
		QrCode: testQrCode(),
		Symbol: testSymbolPNG(t),
	})
	require.NoError(t, err)
	return doc
}

func TestOrderSheetComposer_Small(t *testing.T) {
	doc := composeSheet(t, 3)

	require.Len(t, doc.Pages, 1)
	assert.Equal(t, fulfillment.A4Width, doc.Width)
	assert.Equal(t, fulfillment.A4Height, doc.Height)
	assert.Len(t, doc.Images, 1, "the symbol is registered once")
	assert.Equal(t, 3, countOps[ImageOp](doc))

	texts := doc.Texts()
	assert.Equal(t, "Order #3FA85F64", texts[0])
	assert.Equal(t, "3 x Cafe Menu", texts[1])
	assert.Equal(t, 3, countText(texts, "Cafe Menu"))
	assert.Contains(t, texts, "Ada Lovelace")
	assert.Contains(t, texts, "742 Evergreen Terrace, Springfield, OR 97403")
	assert.Equal(t, 1, countOps[LineOp](doc), "only the address separator")
}

func TestOrderSheetComposer_SmallGuestOrder(t *testing.T) {
	plan, err := fulfillment.PlanLayout(1)
	require.NoError(t, err)

	doc, err := NewOrderSheetComposer().Compose(&OrderSheet{
		Plan:   plan,
		Order:  testOrder(1, "1 Main St"),
		QrCode: testQrCode(),
		Symbol: testSymbolPNG(t),
	})
	require.NoError(t, err)
	assert.Contains(t, doc.Texts(), fulfillment.NotAvailable)
}

func TestOrderSheetComposer_SmallAddressFollowsUsedRows(t *testing.T) {
	doc := composeSheet(t, 5)
	plan, _ := fulfillment.PlanLayout(5)

	var separator LineOp
	for _, o := range doc.Pages[0].Ops {
		if l, ok := o.(LineOp); ok {
			separator = l
		}
	}
	assert.InDelta(t, plan.Margin+2*plan.CellHeight+addressGap, separator.Line.Y1, 1e-9)

	for _, o := range doc.Pages[0].Ops {
		if img, ok := o.(ImageOp); ok {
			assert.Less(t, img.Box.Y+img.Box.H, separator.Line.Y1, "symbols stay above the address block")
			assert.InDelta(t, plan.SymbolSize, img.Box.W, 1e-9)
		}
	}
}

func TestOrderSheetComposer_Large(t *testing.T) {
	doc := composeSheet(t, 30)

	require.Len(t, doc.Pages, 5)
	assert.Equal(t, 30, countOps[ImageOp](doc))
	assert.Len(t, doc.Images, 1)

	for i, page := range doc.Pages {
		texts := page.Texts()
		assert.Equal(t, fmt.Sprintf("Order #3FA85F64 - Page %d/5", i+1), texts[0])
		assert.Equal(t, "Cafe Menu", texts[1])

		dashed := 0
		for _, o := range page.Ops {
			if l, ok := o.(LineOp); ok {
				assert.NotEmpty(t, l.Dash)
				dashed++
			}
		}
		assert.Equal(t, 3, dashed, "one column and two row guides per page")
	}

	assert.NotContains(t, doc.Texts(), "Ada Lovelace", "large sheets carry no address")
}

func TestOrderSheetComposer_SequentialNumbering(t *testing.T) {
	doc := composeSheet(t, 30)

	var indices []string
	for _, s := range doc.Texts() {
		if len(s) > 1 && s[0] == '#' {
			indices = append(indices, s)
		}
	}

	require.Len(t, indices, 30)
	for i, s := range indices {
		assert.Equal(t, fmt.Sprintf("#%d", i+1), s)
	}
}

func TestOrderSheetComposer_PartialLastPage(t *testing.T) {
	doc := composeSheet(t, 14)

	require.Len(t, doc.Pages, 3)
	images := 0
	for _, o := range doc.Pages[2].Ops {
		if _, ok := o.(ImageOp); ok {
			images++
		}
	}
	assert.Equal(t, 2, images)
}

func TestOrderSheetComposer_Errors(t *testing.T) {
	plan, err := fulfillment.PlanLayout(3)
	require.NoError(t, err)

	tests := []struct {
		name  string
		sheet *OrderSheet
		code  string
	}{
		{"nil sheet", nil, ErrCodeInvalidDocument},
		{"missing QR code", &OrderSheet{Plan: plan, Order: testOrder(3, ""), Symbol: []byte{1}}, ErrCodeInvalidDocument},
		{"missing symbol", &OrderSheet{Plan: plan, Order: testOrder(3, ""), QrCode: testQrCode()}, ErrCodeMissingImage},
		{"plan for another quantity", &OrderSheet{Plan: plan, Order: testOrder(4, ""), QrCode: testQrCode(), Symbol: []byte{1}}, ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderSheetComposer().Compose(tt.sheet)
			require.Error(t, err)
			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}
