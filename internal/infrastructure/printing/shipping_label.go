package printing

import (
	"strconv"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LabelOrigin is the static sender block printed on every label
type LabelOrigin struct {
	Brand   string
	Lines   []string // FROM address lines
	Service string   // e.g. "PRIORITY MAIL"
}

// DefaultLabelOrigin is used when no origin is configured
func DefaultLabelOrigin() LabelOrigin {
	return LabelOrigin{
		Brand:   "QR FULFILLMENT",
		Lines:   []string{"QR Fulfillment Center", "100 Print Way", "Portland, OR 97201"},
		Service: "PRIORITY",
	}
}

// ItemWeight is the estimated shipping weight of one printed item in pounds
var ItemWeight = decimal.RequireFromString("0.15")

// LabelDateLayout formats the order date on a label
const LabelDateLayout = "2006-01-02"

const (
	labelMargin     = 10.0
	labelSectionGap = 6.0
	labelPad        = 6.0
	maxOriginLines  = 4
)

var (
	brandFont      = Font{Family: FontHelvetica, Style: "B", Size: 16}
	sectionFont    = Font{Family: FontHelvetica, Style: "B", Size: 7}
	smallFont      = Font{Family: FontHelvetica, Size: 7}
	trackingFont   = Font{Family: FontCourier, Style: "B", Size: 10}
	serviceFont    = Font{Family: FontHelvetica, Style: "B", Size: 10}
	toNameFont     = Font{Family: FontHelvetica, Style: "B", Size: 12}
	toCompanyFont  = Font{Family: FontHelvetica, Size: 9}
	toAddressFont  = Font{Family: FontHelvetica, Size: 10}
	packageFont    = Font{Family: FontHelvetica, Size: 8}
	fragileFont    = Font{Family: FontHelvetica, Style: "B", Size: 8}
	postalCodeFont = Font{Family: FontHelvetica, Style: "B", Size: 18}
)

// ShippingLabel holds the data printed on a delivery label
type ShippingLabel struct {
	Order *fulfillment.OrderView
	User  *fulfillment.UserView // nil when absent
}

// ShippingLabelComposer lays out 100mm x 150mm delivery labels
type ShippingLabelComposer struct {
	origin LabelOrigin
}

// NewShippingLabelComposer creates a new ShippingLabelComposer
func NewShippingLabelComposer(origin LabelOrigin) *ShippingLabelComposer {
	def := DefaultLabelOrigin()
	if origin.Brand == "" {
		origin.Brand = def.Brand
	}
	if len(origin.Lines) == 0 {
		origin.Lines = def.Lines
	}
	if origin.Service == "" {
		origin.Service = def.Service
	}
	return &ShippingLabelComposer{origin: origin}
}

// Compose builds the label as stacked boxed sections: brand header,
// tracking block, FROM and SERVICE, TO, package info and the routing
// barcode with the postal code.
func (c *ShippingLabelComposer) Compose(label *ShippingLabel) (*Document, error) {
	if label == nil || label.Order == nil {
		return nil, NewRenderError(ErrCodeInvalidDocument, "shipping label requires an order", nil)
	}

	order := label.Order
	number := order.Number()
	doc := NewDocument("Delivery Label #"+number, fulfillment.LabelWidth, fulfillment.LabelHeight, order.CreatedAt)
	page := doc.AddPage()

	x := labelMargin
	w := fulfillment.LabelWidth - 2*labelMargin
	y := labelMargin

	// (a) brand header band
	header := fulfillment.Rect{X: x, Y: y, W: w, H: 36}
	page.FillRect(header, Black)
	page.Add(TextBoxOp{Box: header, Text: c.origin.Brand, Font: brandFont, Color: White, Align: AlignCenter})
	y += header.H + labelSectionGap

	// (b) tracking block
	tracking := TrackingNumber(number)
	block := fulfillment.Rect{X: x, Y: y, W: w, H: 70}
	page.StrokeRect(block, 1)
	page.Text(x+labelPad, y+10, "TRACKING #", sectionFont)
	for _, bar := range BarcodeBars(tracking, fulfillment.Rect{X: x + 16, Y: y + 15, W: w - 32, H: 34}) {
		page.FillRect(bar, Black)
	}
	page.TextBox(fulfillment.Rect{X: x, Y: y + 52, W: w, H: 14}, GroupTracking(tracking), trackingFont, AlignCenter)
	y += block.H + labelSectionGap

	// (c) FROM and SERVICE side by side
	half := (w - labelSectionGap) / 2
	from := fulfillment.Rect{X: x, Y: y, W: half, H: 62}
	service := fulfillment.Rect{X: x + half + labelSectionGap, Y: y, W: half, H: 62}
	page.StrokeRect(from, 0.75)
	page.StrokeRect(service, 0.75)
	page.Text(from.X+labelPad, y+10, "FROM:", sectionFont)
	for i, line := range c.origin.Lines {
		if i >= maxOriginLines {
			break
		}
		page.Text(from.X+labelPad, y+21+float64(i)*9, line, smallFont)
	}
	page.Text(service.X+labelPad, y+10, "SERVICE:", sectionFont)
	page.TextBox(fulfillment.Rect{X: service.X, Y: y + 20, W: service.W, H: 16}, c.origin.Service, serviceFont, AlignCenter)
	page.TextBox(fulfillment.Rect{X: service.X, Y: y + 38, W: service.W, H: 12}, "Items: "+strconv.Itoa(order.Quantity), smallFont, AlignCenter)
	y += from.H + labelSectionGap

	// (d) TO
	to := fulfillment.Rect{X: x, Y: y, W: w, H: 110}
	page.StrokeRect(to, 2)
	page.Text(x+labelPad, y+11, "TO:", sectionFont)
	lineY := y + 28.0
	page.Text(x+labelPad+4, lineY, recipientName(label.User), toNameFont)
	lineY += 14
	if label.User != nil && label.User.Company != "" {
		page.Text(x+labelPad+4, lineY, label.User.Company, toCompanyFont)
		lineY += 12
	}
	for _, line := range fulfillment.FormatAddressLines(order.ShippingAddress) {
		page.Text(x+labelPad+4, lineY, line, toAddressFont)
		lineY += 13
	}
	y += to.H + labelSectionGap

	// (e) package information
	pkg := fulfillment.Rect{X: x, Y: y, W: w, H: 62}
	page.StrokeRect(pkg, 0.75)
	page.Text(x+labelPad, y+10, "PACKAGE INFO", sectionFont)
	left := x + labelPad
	right := x + w/2 + labelPad
	page.Text(left, y+22, "Order: #"+number, packageFont)
	page.Text(left, y+33, "Items: "+strconv.Itoa(order.Quantity), packageFont)
	page.Text(left, y+44, "Date: "+order.CreatedAt.UTC().Format(LabelDateLayout), packageFont)
	page.Text(right, y+22, "Weight: "+EstimatedWeight(order.Quantity), packageFont)
	page.Text(right, y+33, "Declared Value: $"+order.FormattedTotal(), packageFont)
	page.Text(right, y+55, "FRAGILE - HANDLE WITH CARE", fragileFont)
	y += pkg.H + labelSectionGap

	// (f) routing barcode and postal code
	bottom := fulfillment.Rect{X: x, Y: y, W: w, H: fulfillment.LabelHeight - labelMargin - y}
	barcodeWidth := w * 0.6
	for _, bar := range BarcodeBars("ROUTE"+number, fulfillment.Rect{X: x, Y: y + 2, W: barcodeWidth, H: bottom.H - 4}) {
		page.FillRect(bar, Black)
	}
	if zip, ok := fulfillment.ExtractPostalCode(order.ShippingAddress); ok {
		page.TextBox(fulfillment.Rect{X: x + barcodeWidth, Y: y, W: w - barcodeWidth, H: bottom.H},
			zip, postalCodeFont, AlignRight)
	}

	return doc, nil
}

// EstimatedWeight returns the placeholder shipping weight for a quantity
func EstimatedWeight(quantity int) string {
	return decimal.NewFromInt(int64(quantity)).Mul(ItemWeight).StringFixed(2) + " lbs"
}

// recipientName upper-cases the display name for the TO block
func recipientName(user *fulfillment.UserView) string {
	name := user.DisplayName()
	if name == fulfillment.NotAvailable {
		return name
	}
	return cases.Upper(language.Und).String(name)
}
