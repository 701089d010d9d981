package fulfillment

import (
	"fmt"
	"math"

	"github.com/qrcampaign/fulfillment/internal/domain/shared"
)

// Page geometry in PDF points (1/72 inch)
const (
	A4Width    = 595.28
	A4Height   = 841.89
	PageMargin = 40.0

	LabelWidth  = 283.46 // 100mm
	LabelHeight = 425.20 // 150mm
)

// Grid policy
const (
	// SmallOrderThreshold is the largest quantity printed on a single
	// address-embedded sheet. Anything above it is paginated and shipped
	// with a separate label.
	SmallOrderThreshold = 10

	smallColumns       = 4
	smallRows          = 6
	smallSymbolPadding = 20.0

	largeColumns       = 2
	largeRows          = 3
	largeSymbolPadding = 40.0

	// SmallGridCapacity is the number of cells on a small-order sheet
	SmallGridCapacity = smallColumns * smallRows
	// LargeItemsPerPage is the number of cells on each large-order page
	LargeItemsPerPage = largeColumns * largeRows
)

// OrderClass is the layout strategy chosen for an order
type OrderClass string

const (
	OrderClassSmall OrderClass = "SMALL"
	OrderClassLarge OrderClass = "LARGE"
)

// String returns the string representation of OrderClass
func (c OrderClass) String() string {
	return string(c)
}

// Classify picks the layout strategy for a quantity
func Classify(quantity int) OrderClass {
	if quantity <= SmallOrderThreshold {
		return OrderClassSmall
	}
	return OrderClassLarge
}

// Rect is an axis-aligned box with its origin at the top-left corner
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Segment is a straight line between two points
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Placement assigns one printed item to a grid cell
type Placement struct {
	Index  int // 0-based position in the order
	Page   int // 0-based page
	Row    int
	Column int
	Cell   Rect
}

// LayoutPlan describes how an order's items are laid out on pages.
// A plan is computed once per order and never mutated.
type LayoutPlan struct {
	Class         OrderClass
	Quantity      int
	PageWidth     float64
	PageHeight    float64
	Margin        float64
	Columns       int
	Rows          int
	CellWidth     float64
	CellHeight    float64
	SymbolSize    float64
	ItemsPerPage  int
	TotalPages    int
	EmbedsAddress bool
}

// PlanLayout computes the layout plan for an order quantity on A4 paper.
func PlanLayout(quantity int) (LayoutPlan, error) {
	if quantity <= 0 {
		return LayoutPlan{}, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Order quantity must be positive, got %d", quantity))
	}

	contentWidth := A4Width - 2*PageMargin
	contentHeight := A4Height - 2*PageMargin

	plan := LayoutPlan{
		Class:      Classify(quantity),
		Quantity:   quantity,
		PageWidth:  A4Width,
		PageHeight: A4Height,
		Margin:     PageMargin,
	}

	switch plan.Class {
	case OrderClassSmall:
		if quantity > SmallGridCapacity {
			return LayoutPlan{}, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Quantity %d exceeds single-sheet capacity of %d", quantity, SmallGridCapacity))
		}
		plan.Columns = smallColumns
		plan.Rows = smallRows
		plan.CellWidth = contentWidth / smallColumns
		// one extra row-height is reserved for the address block
		plan.CellHeight = contentHeight / (smallRows + 1)
		plan.SymbolSize = math.Min(plan.CellWidth, plan.CellHeight) - smallSymbolPadding
		plan.ItemsPerPage = quantity
		plan.TotalPages = 1
		plan.EmbedsAddress = true
	default:
		plan.Columns = largeColumns
		plan.Rows = largeRows
		plan.CellWidth = contentWidth / largeColumns
		plan.CellHeight = contentHeight / largeRows
		plan.SymbolSize = math.Min(plan.CellWidth, plan.CellHeight) - largeSymbolPadding
		plan.ItemsPerPage = LargeItemsPerPage
		plan.TotalPages = (quantity + LargeItemsPerPage - 1) / LargeItemsPerPage
		plan.EmbedsAddress = false
	}

	return plan, nil
}

// IsLarge reports whether the plan is paginated with a separate label
func (p LayoutPlan) IsLarge() bool {
	return p.Class == OrderClassLarge
}

// Cell returns the rectangle of the grid cell at (row, col)
func (p LayoutPlan) Cell(row, col int) Rect {
	return Rect{
		X: p.Margin + float64(col)*p.CellWidth,
		Y: p.Margin + float64(row)*p.CellHeight,
		W: p.CellWidth,
		H: p.CellHeight,
	}
}

// ItemsOnPage returns how many items are printed on the given page
func (p LayoutPlan) ItemsOnPage(page int) int {
	if page < 0 || page >= p.TotalPages {
		return 0
	}
	start := page * p.ItemsPerPage
	end := min(start+p.ItemsPerPage, p.Quantity)
	return end - start
}

// RowsUsed returns the number of grid rows that hold at least one item on a page
func (p LayoutPlan) RowsUsed(page int) int {
	n := p.ItemsOnPage(page)
	return (n + p.Columns - 1) / p.Columns
}

// Placements returns the cell assignments of one page in row-major order.
// Cells past the last item are left out.
func (p LayoutPlan) Placements(page int) []Placement {
	n := p.ItemsOnPage(page)
	if n == 0 {
		return nil
	}

	start := page * p.ItemsPerPage
	placements := make([]Placement, 0, n)
	for slot := 0; slot < n; slot++ {
		row := slot / p.Columns
		col := slot % p.Columns
		placements = append(placements, Placement{
			Index:  start + slot,
			Page:   page,
			Row:    row,
			Column: col,
			Cell:   p.Cell(row, col),
		})
	}
	return placements
}

// AllPlacements returns the placements of every page in page order
func (p LayoutPlan) AllPlacements() []Placement {
	all := make([]Placement, 0, p.Quantity)
	for page := 0; page < p.TotalPages; page++ {
		all = append(all, p.Placements(page)...)
	}
	return all
}

// GridBounds returns the rectangle covered by the full grid
func (p LayoutPlan) GridBounds() Rect {
	return Rect{
		X: p.Margin,
		Y: p.Margin,
		W: float64(p.Columns) * p.CellWidth,
		H: float64(p.Rows) * p.CellHeight,
	}
}

// CutGuides returns the internal column and row boundaries of the grid
func (p LayoutPlan) CutGuides() []Segment {
	grid := p.GridBounds()
	guides := make([]Segment, 0, p.Columns+p.Rows-2)
	for c := 1; c < p.Columns; c++ {
		x := grid.X + float64(c)*p.CellWidth
		guides = append(guides, Segment{X1: x, Y1: grid.Y, X2: x, Y2: grid.Y + grid.H})
	}
	for r := 1; r < p.Rows; r++ {
		y := grid.Y + float64(r)*p.CellHeight
		guides = append(guides, Segment{X1: grid.X, Y1: y, X2: grid.X + grid.W, Y2: y})
	}
	return guides
}
