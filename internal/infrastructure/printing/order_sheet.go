package printing

import (
	"fmt"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
)

// SymbolImage is the name the QR symbol is registered under in an order sheet
const SymbolImage = "symbol"

const (
	titleBaseline    = 26.0
	subtitleBaseline = 37.0
	symbolTopPadding = 6.0
	addressGap       = 10.0
)

var (
	titleFont       = Font{Family: FontHelvetica, Style: "B", Size: 14}
	subtitleFont    = Font{Family: FontHelvetica, Size: 9}
	captionFont     = Font{Family: FontHelvetica, Size: 8}
	indexFont       = Font{Family: FontHelvetica, Style: "B", Size: 10}
	recipientFont   = Font{Family: FontHelvetica, Style: "B", Size: 11}
	addressFont     = Font{Family: FontHelvetica, Size: 10}
	cutGuideDash    = []float64{4, 3}
	cutGuideWidth   = 0.5
	separatorWidth  = 0.75
	addressLineStep = 12.0
)

// OrderSheet holds everything needed to compose the primary document of an
// order. All data is fetched by the caller.
type OrderSheet struct {
	Plan   fulfillment.LayoutPlan
	Order  *fulfillment.OrderView
	User   *fulfillment.UserView // nil when absent
	QrCode *fulfillment.QrCodeView
	Symbol []byte // PNG raster of the QR symbol
}

// OrderSheetComposer lays out the symbol sheet of an order
type OrderSheetComposer struct{}

// NewOrderSheetComposer creates a new OrderSheetComposer
func NewOrderSheetComposer() *OrderSheetComposer {
	return &OrderSheetComposer{}
}

// Compose builds the order sheet. Small plans produce a single page with the
// delivery address below the grid; large plans produce one page per plan page
// with numbered items and cut guides.
func (c *OrderSheetComposer) Compose(sheet *OrderSheet) (*Document, error) {
	if sheet == nil || sheet.Order == nil || sheet.QrCode == nil {
		return nil, NewRenderError(ErrCodeInvalidDocument, "order sheet requires an order and a QR code", nil)
	}
	if len(sheet.Symbol) == 0 {
		return nil, NewRenderError(ErrCodeMissingImage, "order sheet requires a symbol image", nil)
	}
	if sheet.Plan.TotalPages < 1 || sheet.Plan.Quantity != sheet.Order.Quantity {
		return nil, NewRenderError(ErrCodeInvalidDocument,
			fmt.Sprintf("layout plan does not match order quantity %d", sheet.Order.Quantity), nil)
	}

	number := sheet.Order.Number()
	doc := NewDocument("Order #"+number, sheet.Plan.PageWidth, sheet.Plan.PageHeight, sheet.Order.CreatedAt)
	doc.AddImage(SymbolImage, sheet.Symbol)

	if sheet.Plan.IsLarge() {
		c.composeLarge(doc, sheet, number)
	} else {
		c.composeSmall(doc, sheet, number)
	}
	return doc, nil
}

func (c *OrderSheetComposer) composeSmall(doc *Document, sheet *OrderSheet, number string) {
	plan := sheet.Plan
	page := doc.AddPage()

	page.Text(plan.Margin, titleBaseline, "Order #"+number, titleFont)
	page.Text(plan.Margin, subtitleBaseline,
		fmt.Sprintf("%d x %s", sheet.Order.Quantity, sheet.QrCode.Name), subtitleFont)

	for _, p := range plan.Placements(0) {
		symbol := symbolBox(p.Cell, plan.SymbolSize)
		page.Image(SymbolImage, symbol)
		page.TextBox(fulfillment.Rect{X: p.Cell.X, Y: symbol.Y + symbol.H + 1, W: p.Cell.W, H: 9},
			sheet.QrCode.Name, captionFont, AlignCenter)
	}

	contentWidth := plan.PageWidth - 2*plan.Margin
	top := plan.Margin + float64(plan.RowsUsed(0))*plan.CellHeight + addressGap
	page.Line(fulfillment.Segment{X1: plan.Margin, Y1: top, X2: plan.Margin + contentWidth, Y2: top},
		DarkGray, separatorWidth)

	page.TextBox(fulfillment.Rect{X: plan.Margin, Y: top + 8, W: contentWidth, H: 14},
		sheet.User.DisplayName(), recipientFont, AlignLeft)
	page.Paragraph(fulfillment.Rect{X: plan.Margin, Y: top + 24, W: contentWidth},
		sheet.Order.ShippingAddress, addressFont, addressLineStep)
}

func (c *OrderSheetComposer) composeLarge(doc *Document, sheet *OrderSheet, number string) {
	plan := sheet.Plan

	for pageIdx := 0; pageIdx < plan.TotalPages; pageIdx++ {
		page := doc.AddPage()

		page.Text(plan.Margin, titleBaseline,
			fmt.Sprintf("Order #%s - Page %d/%d", number, pageIdx+1, plan.TotalPages), titleFont)
		page.Text(plan.Margin, subtitleBaseline, sheet.QrCode.Name, subtitleFont)

		for _, p := range plan.Placements(pageIdx) {
			symbol := symbolBox(p.Cell, plan.SymbolSize)
			page.Image(SymbolImage, symbol)

			captionTop := symbol.Y + symbol.H + 2
			page.TextBox(fulfillment.Rect{X: p.Cell.X, Y: captionTop, W: p.Cell.W, H: 12},
				fmt.Sprintf("#%d", p.Index+1), indexFont, AlignCenter)
			page.TextBox(fulfillment.Rect{X: p.Cell.X, Y: captionTop + 12, W: p.Cell.W, H: 10},
				sheet.QrCode.Name, captionFont, AlignCenter)
		}

		for _, guide := range plan.CutGuides() {
			page.DashedLine(guide, LightGray, cutGuideWidth, cutGuideDash...)
		}
	}
}

// symbolBox centers a square symbol horizontally in a cell, just below its top edge
func symbolBox(cell fulfillment.Rect, size float64) fulfillment.Rect {
	return fulfillment.Rect{
		X: cell.X + (cell.W-size)/2,
		Y: cell.Y + symbolTopPadding,
		W: size,
		H: size,
	}
}
