// Package printing composes fulfillment documents and serializes them to PDF.
//
// Composition and serialization are separate passes. Composers turn order
// data and a layout plan into a Document, an in-memory list of draw commands
// per page. A PDFRenderer then writes the document out once:
//
//	plan, _ := fulfillment.PlanLayout(order.Quantity)
//	doc, err := printing.NewOrderSheetComposer().Compose(&printing.OrderSheet{
//	    Plan:   plan,
//	    Order:  order,
//	    User:   user,
//	    QrCode: qr,
//	    Symbol: png,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := printing.NewFPDFRenderer(nil).Render(ctx, doc)
//
// Rendering does no I/O. All data is fetched by the caller beforehand.
package printing
