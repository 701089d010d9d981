package archive

// Entry names are part of the archive contract; consumers look them up verbatim.
const (
	SummaryEntry = "fulfillment-summary.csv"
)

// OrderDocumentEntry names the order sheet in a single-order archive
func OrderDocumentEntry(orderNumber string) string {
	return "order-" + orderNumber + ".pdf"
}

// DeliveryLabelEntry names the shipping label in a single-order archive
func DeliveryLabelEntry(orderNumber string) string {
	return "delivery-label-" + orderNumber + ".pdf"
}

// BulkOrderDocumentEntry names an order sheet inside a bulk archive
func BulkOrderDocumentEntry(orderNumber string) string {
	return orderNumber + "/order.pdf"
}

// BulkDeliveryLabelEntry names a shipping label inside a bulk archive
func BulkDeliveryLabelEntry(orderNumber string) string {
	return orderNumber + "/delivery-label.pdf"
}
