package printing

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFPDFRenderer_Render(t *testing.T) {
	renderer := NewFPDFRenderer(nil)
	doc := composeSheet(t, 14)

	result, err := renderer.Render(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(result.PDFData, []byte("%PDF-")))
	assert.Equal(t, 3, result.PageCount)
	assert.Contains(t, string(result.PDFData), "/Count 3")
}

func TestFPDFRenderer_Deterministic(t *testing.T) {
	renderer := NewFPDFRenderer(nil)

	t.Run("order sheet", func(t *testing.T) {
		first, err := renderer.Render(context.Background(), composeSheet(t, 7))
		require.NoError(t, err)
		second, err := renderer.Render(context.Background(), composeSheet(t, 7))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first.PDFData, second.PDFData))
	})

	t.Run("shipping label", func(t *testing.T) {
		composer := NewShippingLabelComposer(LabelOrigin{})
		label := &ShippingLabel{Order: testOrder(20, "1 Main St, Springfield, OR 97403"), User: testUser()}

		a, err := composer.Compose(label)
		require.NoError(t, err)
		b, err := composer.Compose(label)
		require.NoError(t, err)

		first, err := renderer.Render(context.Background(), a)
		require.NoError(t, err)
		second, err := renderer.Render(context.Background(), b)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first.PDFData, second.PDFData))
	})

	t.Run("undated document", func(t *testing.T) {
		build := func() *Document {
			doc := NewDocument("undated", 200, 200, time.Time{})
			doc.AddPage().Text(10, 20, "hello", Font{Family: FontHelvetica, Size: 10})
			return doc
		}
		first, err := renderer.Render(context.Background(), build())
		require.NoError(t, err)
		second, err := renderer.Render(context.Background(), build())
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first.PDFData, second.PDFData))
	})
}

func TestFPDFRenderer_AllOps(t *testing.T) {
	doc := NewDocument("ops", 300, 300, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	doc.AddImage("img", testSymbolPNG(t))
	page := doc.AddPage()
	page.Text(10, 20, "Café", Font{Family: FontHelvetica, Style: "B", Size: 12})
	page.TextBox(fulfillment.Rect{X: 10, Y: 30, W: 100, H: 12}, "centered", Font{Family: FontCourier, Size: 9}, AlignCenter)
	page.Paragraph(fulfillment.Rect{X: 10, Y: 50, W: 80}, "a long paragraph that has to wrap across several lines", Font{Family: FontHelvetica, Size: 9}, 11)
	page.StrokeRect(fulfillment.Rect{X: 5, Y: 5, W: 290, H: 290}, 1)
	page.FillRect(fulfillment.Rect{X: 200, Y: 200, W: 20, H: 20}, DarkGray)
	page.Line(fulfillment.Segment{X1: 0, Y1: 150, X2: 300, Y2: 150}, Black, 0)
	page.DashedLine(fulfillment.Segment{X1: 150, Y1: 0, X2: 150, Y2: 300}, LightGray, 0.5, 4, 3)
	page.Image("img", fulfillment.Rect{X: 100, Y: 100, W: 64, H: 64})
	page.Add(RectOp{Box: fulfillment.Rect{X: 1, Y: 1, W: 1, H: 1}})

	result, err := NewFPDFRenderer(&FPDFConfig{Creator: "test"}).Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PageCount)
	assert.NotEmpty(t, result.PDFData)
}

func TestFPDFRenderer_Errors(t *testing.T) {
	renderer := NewFPDFRenderer(nil)

	validDoc := func() *Document {
		doc := NewDocument("doc", 100, 100, time.Time{})
		doc.AddPage()
		return doc
	}

	t.Run("nil document", func(t *testing.T) {
		_, err := renderer.Render(context.Background(), nil)
		assertRenderCode(t, err, ErrCodeInvalidDocument)
	})

	t.Run("no pages", func(t *testing.T) {
		_, err := renderer.Render(context.Background(), NewDocument("doc", 100, 100, time.Time{}))
		assertRenderCode(t, err, ErrCodeInvalidDocument)
	})

	t.Run("invalid page size", func(t *testing.T) {
		doc := validDoc()
		doc.Width = 0
		_, err := renderer.Render(context.Background(), doc)
		assertRenderCode(t, err, ErrCodeInvalidDocument)
	})

	t.Run("unregistered image", func(t *testing.T) {
		doc := validDoc()
		doc.Pages[0].Image("missing", fulfillment.Rect{W: 10, H: 10})
		_, err := renderer.Render(context.Background(), doc)
		assertRenderCode(t, err, ErrCodeMissingImage)
	})

	t.Run("corrupt image", func(t *testing.T) {
		doc := validDoc()
		doc.AddImage("broken", []byte("not a png"))
		_, err := renderer.Render(context.Background(), doc)
		assertRenderCode(t, err, ErrCodeRenderFailed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := renderer.Render(ctx, validDoc())
		assertRenderCode(t, err, ErrCodeCancelled)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func assertRenderCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, code, renderErr.Code)
}
