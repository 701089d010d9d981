package fulfillment

import (
	"strconv"

	"github.com/google/uuid"
)

// SummaryHeader is the column order of the fulfillment summary CSV.
// Consumers parse this file, so the order must not change.
var SummaryHeader = []string{
	"OrderNumber",
	"CustomerEmail",
	"QrCodeName",
	"Quantity",
	"Total",
	"Status",
	"Date",
}

// SummaryDateLayout formats the Date column
const SummaryDateLayout = "2006-01-02"

// SummaryRow is one reconciliation line of a bulk export
type SummaryRow struct {
	OrderNumber   string
	CustomerEmail string
	QrCodeName    string
	Quantity      string
	Total         string
	Status        string
	Date          string
}

// NewSummaryRow builds a summary row from whatever could be fetched for an
// order. Any nil view degrades its columns to NotAvailable.
func NewSummaryRow(orderID uuid.UUID, order *OrderView, user *UserView, qr *QrCodeView) SummaryRow {
	row := SummaryRow{
		OrderNumber:   OrderNumber(orderID),
		CustomerEmail: NotAvailable,
		QrCodeName:    NotAvailable,
		Quantity:      NotAvailable,
		Total:         NotAvailable,
		Status:        NotAvailable,
		Date:          NotAvailable,
	}
	if order != nil {
		row.Quantity = strconv.Itoa(order.Quantity)
		row.Total = order.FormattedTotal()
		if order.Status != "" {
			row.Status = order.Status
		}
		row.Date = order.CreatedAt.UTC().Format(SummaryDateLayout)
	}
	if user != nil && user.Email != "" {
		row.CustomerEmail = user.Email
	}
	if qr != nil && qr.Name != "" {
		row.QrCodeName = qr.Name
	}
	return row
}

// Record returns the row's fields in SummaryHeader order
func (r SummaryRow) Record() []string {
	return []string{
		r.OrderNumber,
		r.CustomerEmail,
		r.QrCodeName,
		r.Quantity,
		r.Total,
		r.Status,
		r.Date,
	}
}
