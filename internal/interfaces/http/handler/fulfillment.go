package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/application/fulfillment"
	domain "github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/archive"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/dto"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Headers describing a streamed bulk export. The counts that are only known
// once the archive is complete travel as trailers.
const (
	HeaderRequestedOrders = "X-Requested-Orders"
	HeaderExportedOrders  = "X-Exported-Orders"
	HeaderFailedOrders    = "X-Failed-Orders"
)

const contentTypePDF = "application/pdf"

// FulfillmentService is the subset of the fulfillment application service
// used by the HTTP layer
type FulfillmentService interface {
	GenerateOrderDocument(ctx context.Context, orderID uuid.UUID) ([]byte, error)
	GenerateShippingLabel(ctx context.Context, orderID uuid.UUID) ([]byte, error)
	GenerateOrderArchive(ctx context.Context, orderID uuid.UUID) ([]byte, error)
	PlanOrderLayout(ctx context.Context, orderID uuid.UUID) (*fulfillment.LayoutPlanResponse, error)
	StreamBulkArchive(ctx context.Context, orderIDs []uuid.UUID, w io.Writer) (*fulfillment.BulkExportResult, error)
	ExportBulkArchive(ctx context.Context, orderIDs []uuid.UUID) (*fulfillment.StoredExportResponse, error)
}

// FulfillmentHandler serves order documents and archives
type FulfillmentHandler struct {
	BaseHandler
	service FulfillmentService
	logger  *zap.Logger
	now     func() time.Time
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(service FulfillmentService, logger *zap.Logger) *FulfillmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrderDocument godoc
//
//	@ID				getFulfillmentOrderDocument
//	@Summary		Render an order sheet
//	@Description	Render the printable order sheet with the order's QR stickers as a PDF
//	@Tags			fulfillment
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{file}		binary	"PDF file"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/fulfillment/orders/{id}/document [get]
func (h *FulfillmentHandler) GetOrderDocument(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	data, err := h.service.GenerateOrderDocument(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendFile(c, contentTypePDF, "inline", archive.OrderDocumentEntry(domain.OrderNumber(orderID)), data)
}

// GetShippingLabel godoc
//
//	@ID				getFulfillmentShippingLabel
//	@Summary		Render a shipping label
//	@Description	Render the delivery label of an order as a PDF
//	@Tags			fulfillment
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{file}		binary	"PDF file"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/fulfillment/orders/{id}/label [get]
func (h *FulfillmentHandler) GetShippingLabel(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	data, err := h.service.GenerateShippingLabel(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendFile(c, contentTypePDF, "inline", archive.DeliveryLabelEntry(domain.OrderNumber(orderID)), data)
}

// GetOrderArchive godoc
//
//	@ID				getFulfillmentOrderArchive
//	@Summary		Download an order archive
//	@Description	Zip the order sheet and, for large orders, the shipping label
//	@Tags			fulfillment
//	@Produce		application/zip
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{file}		binary	"ZIP archive"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/fulfillment/orders/{id}/archive [get]
func (h *FulfillmentHandler) GetOrderArchive(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	data, err := h.service.GenerateOrderArchive(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendFile(c, fulfillment.ContentTypeZip, "attachment", "order-"+domain.OrderNumber(orderID)+".zip", data)
}

// GetOrderLayout godoc
//
//	@ID				getFulfillmentOrderLayout
//	@Summary		Preview the sticker layout
//	@Description	Return the page layout an order sheet would use without rendering it
//	@Tags			fulfillment
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	LayoutPlanAPIResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/fulfillment/orders/{id}/layout [get]
func (h *FulfillmentHandler) GetOrderLayout(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	plan, err := h.service.PlanOrderLayout(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// StreamExport godoc
//
//	@ID				streamFulfillmentExport
//	@Summary		Stream a bulk archive
//	@Description	Stream one archive holding the documents of many orders plus a fulfillment summary.
//	@Description	Orders that fail are listed in the summary; the counts follow as trailers.
//	@Tags			fulfillment
//	@Accept			json
//	@Produce		application/zip
//	@Param			request	body		fulfillment.BulkExportRequest	true	"Orders to export"
//	@Success		200		{file}		binary							"ZIP archive"
//	@Failure		400		{object}	ErrorResponse
//	@Router			/fulfillment/exports [post]
func (h *FulfillmentHandler) StreamExport(c *gin.Context) {
	req, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	filename := "fulfillment-export-" + h.now().UTC().Format("20060102-150405") + ".zip"
	out := &archiveResponseWriter{
		c:         c,
		filename:  filename,
		requested: len(req.OrderIDs),
	}

	result, err := h.service.StreamBulkArchive(c.Request.Context(), req.OrderIDs, out)
	if err != nil {
		if !out.started {
			h.HandleError(c, err)
			return
		}
		// headers are already sent; the missing trailers mark the archive incomplete
		h.logger.Error("bulk export aborted mid-stream",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		c.Abort()
		return
	}

	out.start()
	c.Writer.Header().Set(HeaderExportedOrders, strconv.Itoa(result.ExportedOrders))
	c.Writer.Header().Set(HeaderFailedOrders, strconv.Itoa(len(result.FailedOrders)))
}

// CreateStoredExport godoc
//
//	@ID				createFulfillmentStoredExport
//	@Summary		Store a bulk archive
//	@Description	Build a bulk archive, upload it to object storage and return a time-limited download link
//	@Tags			fulfillment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fulfillment.BulkExportRequest	true	"Orders to export"
//	@Success		201		{object}	StoredExportAPIResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/fulfillment/exports/stored [post]
func (h *FulfillmentHandler) CreateStoredExport(c *gin.Context) {
	req, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	result, err := h.service.ExportBulkArchive(c.Request.Context(), req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

func (h *FulfillmentHandler) bindExportRequest(c *gin.Context) (*fulfillment.BulkExportRequest, bool) {
	var req fulfillment.BulkExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, validationErrs)
			return nil, false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body must be a JSON object with an order_ids array")
		return nil, false
	}
	return &req, true
}

func (h *FulfillmentHandler) sendFile(c *gin.Context, contentType, disposition, filename string, data []byte) {
	c.Header("Content-Disposition", disposition+"; filename=\""+filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

// archiveResponseWriter defers the response headers until the first archive
// bytes arrive, so failures before that point can still be reported as JSON.
type archiveResponseWriter struct {
	c         *gin.Context
	filename  string
	requested int
	started   bool
}

func (w *archiveResponseWriter) start() {
	if w.started {
		return
	}
	w.started = true

	header := w.c.Writer.Header()
	header.Set("Content-Type", fulfillment.ContentTypeZip)
	header.Set("Content-Disposition", "attachment; filename=\""+w.filename+"\"")
	header.Set("Cache-Control", "no-store")
	header.Set(HeaderRequestedOrders, strconv.Itoa(w.requested))
	header.Add("Trailer", HeaderExportedOrders)
	header.Add("Trailer", HeaderFailedOrders)
	w.c.Status(http.StatusOK)
}

func (w *archiveResponseWriter) Write(p []byte) (int, error) {
	w.start()
	return w.c.Writer.Write(p)
}
