package printing

import (
	"time"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
)

// Align is the horizontal alignment of text inside a box
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Font families available to documents. Only the PDF core fonts are used so
// no font files have to ship with the service.
const (
	FontHelvetica = "Helvetica"
	FontCourier   = "Courier"
)

// Font selects family, style ("", "B", "I", "BI") and size in points
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Color is an RGB color
type Color struct {
	R, G, B uint8
}

var (
	Black     = Color{0, 0, 0}
	White     = Color{255, 255, 255}
	LightGray = Color{180, 180, 180}
	DarkGray  = Color{90, 90, 90}
)

// Op is one draw command on a page
type Op interface {
	op()
}

// TextOp draws a single line of text with its baseline at (X, Y)
type TextOp struct {
	X, Y  float64
	Text  string
	Font  Font
	Color Color
}

// TextBoxOp draws text inside a box. Wrapped text flows onto as many lines
// of LineHeight as needed; unwrapped text is aligned on one line.
type TextBoxOp struct {
	Box        fulfillment.Rect
	Text       string
	Font       Font
	Color      Color
	Align      Align
	Wrap       bool
	LineHeight float64
}

// RectOp draws a rectangle. A nil Fill or Stroke skips that part.
type RectOp struct {
	Box       fulfillment.Rect
	Fill      *Color
	Stroke    *Color
	LineWidth float64
}

// LineOp draws a straight line, dashed when Dash is set
type LineOp struct {
	Line      fulfillment.Segment
	Color     Color
	LineWidth float64
	Dash      []float64
}

// ImageOp places a registered image into a box
type ImageOp struct {
	Box   fulfillment.Rect
	Image string
}

func (TextOp) op()    {}
func (TextBoxOp) op() {}
func (RectOp) op()    {}
func (LineOp) op()    {}
func (ImageOp) op()   {}

// Page is an ordered list of draw commands
type Page struct {
	Ops []Op
}

// Document is the in-memory content model of a fixed-page document.
// It is built completely before being serialized once by a PDFRenderer.
type Document struct {
	Title     string
	Width     float64
	Height    float64
	CreatedAt time.Time
	Images    map[string][]byte // PNG data by name
	Pages     []*Page
}

// NewDocument creates an empty document with the given page size in points
func NewDocument(title string, width, height float64, createdAt time.Time) *Document {
	return &Document{
		Title:     title,
		Width:     width,
		Height:    height,
		CreatedAt: createdAt,
		Images:    make(map[string][]byte),
	}
}

// AddImage registers PNG data under a name. Registering once and drawing it
// many times keeps a single copy in the output.
func (d *Document) AddImage(name string, png []byte) {
	d.Images[name] = png
}

// AddPage appends a new blank page and returns it
func (d *Document) AddPage() *Page {
	p := &Page{}
	d.Pages = append(d.Pages, p)
	return p
}

// Texts returns every text string in drawing order, page by page
func (d *Document) Texts() []string {
	var texts []string
	for _, p := range d.Pages {
		texts = append(texts, p.Texts()...)
	}
	return texts
}

// Texts returns the text strings drawn on the page
func (p *Page) Texts() []string {
	var texts []string
	for _, o := range p.Ops {
		switch t := o.(type) {
		case TextOp:
			texts = append(texts, t.Text)
		case TextBoxOp:
			texts = append(texts, t.Text)
		}
	}
	return texts
}

// Text draws a line of text at a baseline position
func (p *Page) Text(x, y float64, text string, font Font) {
	p.Ops = append(p.Ops, TextOp{X: x, Y: y, Text: text, Font: font, Color: Black})
}

// TextBox draws one line of aligned text inside a box
func (p *Page) TextBox(box fulfillment.Rect, text string, font Font, align Align) {
	p.Ops = append(p.Ops, TextBoxOp{Box: box, Text: text, Font: font, Color: Black, Align: align})
}

// Paragraph draws text wrapped to the box width
func (p *Page) Paragraph(box fulfillment.Rect, text string, font Font, lineHeight float64) {
	p.Ops = append(p.Ops, TextBoxOp{
		Box: box, Text: text, Font: font, Color: Black,
		Align: AlignLeft, Wrap: true, LineHeight: lineHeight,
	})
}

// StrokeRect draws a rectangle outline
func (p *Page) StrokeRect(box fulfillment.Rect, lineWidth float64) {
	c := Black
	p.Ops = append(p.Ops, RectOp{Box: box, Stroke: &c, LineWidth: lineWidth})
}

// FillRect draws a filled rectangle
func (p *Page) FillRect(box fulfillment.Rect, fill Color) {
	p.Ops = append(p.Ops, RectOp{Box: box, Fill: &fill})
}

// Line draws a solid line
func (p *Page) Line(seg fulfillment.Segment, color Color, lineWidth float64) {
	p.Ops = append(p.Ops, LineOp{Line: seg, Color: color, LineWidth: lineWidth})
}

// DashedLine draws a dashed line with the given dash/gap lengths
func (p *Page) DashedLine(seg fulfillment.Segment, color Color, lineWidth float64, dash ...float64) {
	p.Ops = append(p.Ops, LineOp{Line: seg, Color: color, LineWidth: lineWidth, Dash: dash})
}

// Image places a registered image
func (p *Page) Image(name string, box fulfillment.Rect) {
	p.Ops = append(p.Ops, ImageOp{Box: box, Image: name})
}

// Add appends a raw draw command
func (p *Page) Add(o Op) {
	p.Ops = append(p.Ops, o)
}
