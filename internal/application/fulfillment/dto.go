package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
)

// =============================================================================
// Bulk Export DTOs
// =============================================================================

// BulkExportRequest lists the orders of a bulk export, processed in the
// given order
type BulkExportRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"max=1000"`
}

// BulkExportResult describes an archive written by StreamBulkArchive
type BulkExportResult struct {
	RequestedOrders int      `json:"requested_orders"`
	ExportedOrders  int      `json:"exported_orders"`
	FailedOrders    []string `json:"failed_orders"` // order numbers without documents
	Entries         []string `json:"entries"`
	Bytes           int64    `json:"bytes"`
}

// Partial reports whether at least one requested order has no documents in
// the archive
func (r *BulkExportResult) Partial() bool {
	return len(r.FailedOrders) > 0
}

// StoredExportResponse is returned after a bulk archive was uploaded to
// object storage
type StoredExportResponse struct {
	ObjectKey       string    `json:"object_key"`
	DownloadURL     string    `json:"download_url"`
	ExpiresAt       time.Time `json:"expires_at"`
	Bytes           int64     `json:"bytes"`
	RequestedOrders int       `json:"requested_orders"`
	ExportedOrders  int       `json:"exported_orders"`
	FailedOrders    []string  `json:"failed_orders"`
}

// =============================================================================
// Layout DTOs
// =============================================================================

// LayoutPlanResponse exposes the computed layout of an order
type LayoutPlanResponse struct {
	OrderID       string           `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	Class         string           `json:"class"`
	Quantity      int              `json:"quantity"`
	PageWidth     float64          `json:"page_width"`
	PageHeight    float64          `json:"page_height"`
	Margin        float64          `json:"margin"`
	Columns       int              `json:"columns"`
	Rows          int              `json:"rows"`
	CellWidth     float64          `json:"cell_width"`
	CellHeight    float64          `json:"cell_height"`
	SymbolSize    float64          `json:"symbol_size"`
	ItemsPerPage  int              `json:"items_per_page"`
	TotalPages    int              `json:"total_pages"`
	EmbedsAddress bool             `json:"embeds_address"`
	HasLabel      bool             `json:"has_label"`
	Pages         []LayoutPageInfo `json:"pages"`
}

// LayoutPageInfo summarizes one page of a layout plan
type LayoutPageInfo struct {
	Page  int                `json:"page"` // 1-based
	Items int                `json:"items"`
	Rows  int                `json:"rows"`
	Cells []fulfillment.Rect `json:"cells"`
}

func toLayoutPlanResponse(order *fulfillment.OrderView, plan fulfillment.LayoutPlan) *LayoutPlanResponse {
	resp := &LayoutPlanResponse{
		OrderID:       order.ID.String(),
		OrderNumber:   order.Number(),
		Class:         plan.Class.String(),
		Quantity:      plan.Quantity,
		PageWidth:     plan.PageWidth,
		PageHeight:    plan.PageHeight,
		Margin:        plan.Margin,
		Columns:       plan.Columns,
		Rows:          plan.Rows,
		CellWidth:     plan.CellWidth,
		CellHeight:    plan.CellHeight,
		SymbolSize:    plan.SymbolSize,
		ItemsPerPage:  plan.ItemsPerPage,
		TotalPages:    plan.TotalPages,
		EmbedsAddress: plan.EmbedsAddress,
		HasLabel:      plan.IsLarge(),
		Pages:         make([]LayoutPageInfo, 0, plan.TotalPages),
	}
	for page := 0; page < plan.TotalPages; page++ {
		placements := plan.Placements(page)
		cells := make([]fulfillment.Rect, len(placements))
		for i, p := range placements {
			cells[i] = p.Cell
		}
		resp.Pages = append(resp.Pages, LayoutPageInfo{
			Page:  page + 1,
			Items: plan.ItemsOnPage(page),
			Rows:  plan.RowsUsed(page),
			Cells: cells,
		})
	}
	return resp
}
