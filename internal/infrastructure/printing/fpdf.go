package printing

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// DocumentEpoch stamps documents that carry no creation time, so that
// their metadata stays reproducible.
var DocumentEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const defaultCreator = "QR Fulfillment"

// FPDFConfig contains configuration for the fpdf renderer
type FPDFConfig struct {
	// Creator is written into the PDF metadata
	Creator string
	// Logger for debug output
	Logger *zap.Logger
}

// FPDFRenderer serializes documents with go-pdf/fpdf. Output is
// byte-stable: metadata dates come from the document and catalog
// dictionaries are written in sorted order.
type FPDFRenderer struct {
	config *FPDFConfig
	logger *zap.Logger
}

// NewFPDFRenderer creates a new fpdf-based PDF renderer
func NewFPDFRenderer(config *FPDFConfig) *FPDFRenderer {
	if config == nil {
		config = &FPDFConfig{}
	}
	if config.Creator == "" {
		config.Creator = defaultCreator
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FPDFRenderer{
		config: config,
		logger: logger,
	}
}

// Render converts a document to PDF
func (r *FPDFRenderer) Render(ctx context.Context, doc *Document) (*RenderResult, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeCancelled, "rendering cancelled", err)
	}

	startTime := time.Now()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	stamp := doc.CreatedAt
	if stamp.IsZero() {
		stamp = DocumentEpoch
	}
	pdf.SetCreationDate(stamp.UTC())
	pdf.SetModificationDate(stamp.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(r.config.Creator, true)

	// Register images in name order so object numbering is stable
	names := make([]string, 0, len(doc.Images))
	for name := range doc.Images {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(doc.Images[name]))
	}
	if pdf.Err() {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to register images", pdf.Error())
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, NewRenderError(ErrCodeCancelled, "rendering cancelled", err)
		}
		pdf.AddPage()
		for _, o := range page.Ops {
			if err := r.draw(pdf, doc, o, tr); err != nil {
				return nil, err
			}
		}
		if pdf.Err() {
			return nil, NewRenderError(ErrCodeRenderFailed, fmt.Sprintf("failed to draw page %d", i+1), pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to serialize PDF", err)
	}

	renderDuration := time.Since(startTime)

	r.logger.Debug("PDF rendered",
		zap.String("title", doc.Title),
		zap.Int("bytes", buf.Len()),
		zap.Int("pages", len(doc.Pages)),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      len(doc.Pages),
		RenderDuration: renderDuration,
	}, nil
}

func (r *FPDFRenderer) draw(pdf *fpdf.Fpdf, doc *Document, o Op, tr func(string) string) error {
	switch op := o.(type) {
	case TextOp:
		pdf.SetFont(op.Font.Family, op.Font.Style, op.Font.Size)
		pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
		pdf.Text(op.X, op.Y, tr(op.Text))

	case TextBoxOp:
		pdf.SetFont(op.Font.Family, op.Font.Style, op.Font.Size)
		pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
		pdf.SetXY(op.Box.X, op.Box.Y)
		if op.Wrap {
			lineHeight := op.LineHeight
			if lineHeight <= 0 {
				lineHeight = op.Font.Size * 1.2
			}
			pdf.MultiCell(op.Box.W, lineHeight, tr(op.Text), "", string(op.Align), false)
		} else {
			pdf.CellFormat(op.Box.W, op.Box.H, tr(op.Text), "", 0, string(op.Align), false, 0, "")
		}

	case RectOp:
		style := ""
		if op.Fill != nil {
			pdf.SetFillColor(int(op.Fill.R), int(op.Fill.G), int(op.Fill.B))
			style += "F"
		}
		if op.Stroke != nil {
			pdf.SetDrawColor(int(op.Stroke.R), int(op.Stroke.G), int(op.Stroke.B))
			pdf.SetLineWidth(lineWidthOrDefault(op.LineWidth))
			style += "D"
		}
		if style == "" {
			return nil
		}
		pdf.Rect(op.Box.X, op.Box.Y, op.Box.W, op.Box.H, style)

	case LineOp:
		pdf.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
		pdf.SetLineWidth(lineWidthOrDefault(op.LineWidth))
		if len(op.Dash) > 0 {
			pdf.SetDashPattern(op.Dash, 0)
		}
		pdf.Line(op.Line.X1, op.Line.Y1, op.Line.X2, op.Line.Y2)
		if len(op.Dash) > 0 {
			pdf.SetDashPattern([]float64{}, 0)
		}

	case ImageOp:
		if _, ok := doc.Images[op.Image]; !ok {
			return NewRenderError(ErrCodeMissingImage, "image not registered: "+op.Image, nil)
		}
		pdf.ImageOptions(op.Image, op.Box.X, op.Box.Y, op.Box.W, op.Box.H, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	default:
		return NewRenderError(ErrCodeInvalidDocument, fmt.Sprintf("unsupported draw command %T", o), nil)
	}
	return nil
}

func validateDocument(doc *Document) error {
	if doc == nil {
		return NewRenderError(ErrCodeInvalidDocument, "document is nil", nil)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return NewRenderError(ErrCodeInvalidDocument,
			fmt.Sprintf("invalid page size %.2fx%.2f", doc.Width, doc.Height), nil)
	}
	if len(doc.Pages) == 0 {
		return NewRenderError(ErrCodeInvalidDocument, "document has no pages", nil)
	}
	return nil
}

func lineWidthOrDefault(w float64) float64 {
	if w <= 0 {
		return 0.5
	}
	return w
}

// Ensure FPDFRenderer implements PDFRenderer
var _ PDFRenderer = (*FPDFRenderer)(nil)
