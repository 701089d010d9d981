package printing

import (
	"strings"

	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
)

// TrackingNumber derives the pseudo tracking string printed on a label from
// the order number: "QR" + order number + one check digit. It is not a
// carrier tracking number.
func TrackingNumber(orderNumber string) string {
	sum := 0
	for i, b := range []byte(orderNumber) {
		weight := 1
		if i%2 == 0 {
			weight = 3
		}
		sum += int(b) * weight
	}
	check := (10 - sum%10) % 10
	return "QR" + orderNumber + string(rune('0'+check))
}

// GroupTracking formats a tracking string in blocks of four for display
func GroupTracking(tracking string) string {
	var b strings.Builder
	for i, r := range tracking {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BarcodeBars returns the filled bars of a decorative barcode for data,
// scaled to fill box. Each byte contributes two bars and two gaps whose
// widths come from its bits, so the pattern is stable per input but is not
// a scannable symbology.
func BarcodeBars(data string, box fulfillment.Rect) []fulfillment.Rect {
	if data == "" || box.W <= 0 {
		return nil
	}

	// widths in modules, alternating bar, gap, bar, gap...
	widths := make([]int, 0, len(data)*4+2)
	widths = append(widths, 2, 1) // start guard
	for _, b := range []byte(data) {
		widths = append(widths,
			1+int(b>>6)%3,
			1+int(b>>4)&1,
			1+int(b>>2)%3,
			1+int(b)&1,
		)
	}
	widths = append(widths, 2) // end guard

	total := 0
	for _, w := range widths {
		total += w
	}
	module := box.W / float64(total)

	bars := make([]fulfillment.Rect, 0, len(widths)/2+1)
	x := box.X
	for i, w := range widths {
		width := float64(w) * module
		if i%2 == 0 {
			bars = append(bars, fulfillment.Rect{X: x, Y: box.Y, W: width, H: box.H})
		}
		x += width
	}
	return bars
}
