// Package fulfillment generates the printable documents and archives that
// ship paid QR-code orders.
package fulfillment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/domain/shared"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/archive"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/printing"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/storage"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/symbol"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "FulfillmentService"

// Defaults applied to a zero Config
const (
	DefaultBulkWorkers     = 4
	DefaultMaxBulkOrders   = 500
	DefaultSymbolDPI       = 300
	DefaultExportURLExpiry = 15 * time.Minute
)

// ContentTypeZip is the media type of generated archives
const ContentTypeZip = "application/zip"

// ErrStorageUnavailable is returned by ExportBulkArchive when no object
// storage is configured
var ErrStorageUnavailable = errors.New("object storage is not configured")

// Config holds the generation settings of FulfillmentService
type Config struct {
	ShortLinkBaseURL string
	BulkWorkers      int
	MaxBulkOrders    int
	SymbolDPI        int
	ExportURLExpiry  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BulkWorkers <= 0 {
		c.BulkWorkers = DefaultBulkWorkers
	}
	if c.MaxBulkOrders <= 0 {
		c.MaxBulkOrders = DefaultMaxBulkOrders
	}
	if c.SymbolDPI <= 0 {
		c.SymbolDPI = DefaultSymbolDPI
	}
	if c.ExportURLExpiry <= 0 {
		c.ExportURLExpiry = DefaultExportURLExpiry
	}
	return c
}

// FulfillmentService turns orders into order sheets, shipping labels and
// zip archives of both
type FulfillmentService struct {
	orders   fulfillment.OrderReader
	users    fulfillment.UserReader
	qrCodes  fulfillment.QrCodeReader
	encoder  fulfillment.SymbolEncoder
	renderer printing.PDFRenderer
	sheets   *printing.OrderSheetComposer
	labels   *printing.ShippingLabelComposer
	storage  storage.ObjectStorage
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewFulfillmentService creates a new FulfillmentService. objectStorage may
// be nil, in which case ExportBulkArchive is unavailable.
func NewFulfillmentService(
	orders fulfillment.OrderReader,
	users fulfillment.UserReader,
	qrCodes fulfillment.QrCodeReader,
	encoder fulfillment.SymbolEncoder,
	renderer printing.PDFRenderer,
	labels *printing.ShippingLabelComposer,
	objectStorage storage.ObjectStorage,
	config Config,
	logger *zap.Logger,
) *FulfillmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if labels == nil {
		labels = printing.NewShippingLabelComposer(printing.DefaultLabelOrigin())
	}
	return &FulfillmentService{
		orders:   orders,
		users:    users,
		qrCodes:  qrCodes,
		encoder:  encoder,
		renderer: renderer,
		sheets:   printing.NewOrderSheetComposer(),
		labels:   labels,
		storage:  objectStorage,
		config:   config.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}
}

// =============================================================================
// Single Order Operations
// =============================================================================

// GenerateOrderDocument renders the order sheet of an order. The layout is
// chosen from the order quantity.
func (s *FulfillmentService) GenerateOrderDocument(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "GenerateOrderDocument",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	data, err := s.fetch(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	plan, err := fulfillment.PlanLayout(data.order.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pdf, err := s.renderSheet(ctx, data, plan)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, data.order.Number(),
		telemetry.SpanAttrLayoutKind, plan.Class.String(),
		telemetry.SpanAttrPageCount, plan.TotalPages)
	telemetry.SetOK(span)

	s.logger.Info("order document generated",
		zap.String("order_id", orderID.String()),
		zap.String("layout", plan.Class.String()),
		zap.Int("pages", plan.TotalPages),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// GenerateShippingLabel renders the delivery label of an order. Labels are
// only packaged for large orders; callers gate on order size.
func (s *FulfillmentService) GenerateShippingLabel(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "GenerateShippingLabel",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	order, err := s.fetchOrder(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	user, err := s.fetchUser(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pdf, err := s.renderLabel(ctx, &orderData{id: orderID, order: order, user: user})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	s.logger.Info("shipping label generated",
		zap.String("order_id", orderID.String()),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// GenerateOrderArchive packages the order sheet, plus the delivery label for
// large orders, into a zip archive
func (s *FulfillmentService) GenerateOrderArchive(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "GenerateOrderArchive",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	data, err := s.fetch(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	docs, err := s.renderOrder(ctx, data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var buf bytes.Buffer
	bundler := archive.NewBundler(&buf)
	number := data.order.Number()
	modified := data.order.CreatedAt
	if err := bundler.Add(archive.OrderDocumentEntry(number), modified, docs.sheet); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to add order document: %w", err)
	}
	if docs.label != nil {
		if err := bundler.Add(archive.DeliveryLabelEntry(number), modified, docs.label); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to add delivery label: %w", err)
		}
	}
	if err := bundler.Close(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, number,
		telemetry.SpanAttrLayoutKind, docs.plan.Class.String(),
		telemetry.SpanAttrArchiveBytes, buf.Len())
	telemetry.SetOK(span)

	s.logger.Info("order archive generated",
		zap.String("order_id", orderID.String()),
		zap.Strings("entries", bundler.Entries()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// PlanOrderLayout returns the layout an order's documents are rendered with
func (s *FulfillmentService) PlanOrderLayout(ctx context.Context, orderID uuid.UUID) (*LayoutPlanResponse, error) {
	order, err := s.fetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	plan, err := fulfillment.PlanLayout(order.Quantity)
	if err != nil {
		return nil, err
	}
	return toLayoutPlanResponse(order, plan), nil
}

// =============================================================================
// Bulk Operations
// =============================================================================

// GenerateBulkArchive packages many orders into one archive. See
// StreamBulkArchive for the failure semantics.
func (s *FulfillmentService) GenerateBulkArchive(ctx context.Context, orderIDs []uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.StreamBulkArchive(ctx, orderIDs, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StreamBulkArchive writes a bulk archive to w. Each order gets a folder
// named by its order number; a fulfillment summary with one row per
// requested order closes the archive.
//
// Orders are rendered in parallel and appended in request order. An order
// that cannot be fetched or rendered is left out of the archive and its
// summary row degrades to N/A; it never fails the batch. Only invalid
// requests, cancellation and write errors on w are returned.
func (s *FulfillmentService) StreamBulkArchive(ctx context.Context, orderIDs []uuid.UUID, w io.Writer) (*BulkExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "StreamBulkArchive",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(orderIDs)))
	defer span.End()

	if err := s.validateBatch(orderIDs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make([]*bulkJob, len(orderIDs))
	for i, id := range orderIDs {
		jobs[i] = &bulkJob{id: id, done: make(chan struct{})}
	}
	dispatched := s.dispatch(ctx, jobs)
	defer func() {
		cancel()
		<-dispatched
	}()

	counter := &countingWriter{w: w}
	bundler := archive.NewBundler(counter)
	result := &BulkExportResult{
		RequestedOrders: len(orderIDs),
		FailedOrders:    []string{},
	}
	rows := make([]fulfillment.SummaryRow, 0, len(jobs))
	summaryTime := archive.Epoch

	for _, job := range jobs {
		select {
		case <-job.done:
		case <-ctx.Done():
			telemetry.RecordError(span, ctx.Err())
			return nil, ctx.Err()
		}

		rows = append(rows, job.row)
		if job.data != nil && job.data.order != nil && job.data.order.CreatedAt.After(summaryTime) {
			summaryTime = job.data.order.CreatedAt
		}

		number := fulfillment.OrderNumber(job.id)
		if job.err != nil {
			s.logger.Warn("order skipped in bulk export",
				zap.String("order_id", job.id.String()),
				zap.Error(job.err))
			result.FailedOrders = append(result.FailedOrders, number)
			continue
		}

		if err := addBulkEntries(bundler, number, job); err != nil {
			if !errors.Is(err, archive.ErrDuplicateEntry) {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("failed to write bulk archive: %w", err)
			}
			// two ids sharing an order number prefix
			s.logger.Warn("order skipped in bulk export",
				zap.String("order_id", job.id.String()),
				zap.Error(err))
			result.FailedOrders = append(result.FailedOrders, number)
			continue
		}
		job.docs = nil
		result.ExportedOrders++
	}

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := bundler.AddSummary(rows, summaryTime); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to write fulfillment summary: %w", err)
	}
	if err := bundler.Close(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	result.Entries = bundler.Entries()
	result.Bytes = counter.n

	telemetry.SetAttributes(span,
		telemetry.SpanAttrFailedOrders, len(result.FailedOrders),
		telemetry.SpanAttrArchiveBytes, result.Bytes)
	telemetry.SetOK(span)

	s.logger.Info("bulk archive generated",
		zap.Int("requested", result.RequestedOrders),
		zap.Int("exported", result.ExportedOrders),
		zap.Int("failed", len(result.FailedOrders)),
		zap.Int64("bytes", result.Bytes))
	return result, nil
}

// ExportBulkArchive builds a bulk archive, uploads it to object storage and
// returns a presigned download link
func (s *FulfillmentService) ExportBulkArchive(ctx context.Context, orderIDs []uuid.UUID) (*StoredExportResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "ExportBulkArchive",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(orderIDs)))
	defer span.End()

	var buf bytes.Buffer
	result, err := s.StreamBulkArchive(ctx, orderIDs, &buf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now().UTC()
	key := s.storage.ObjectKey(fmt.Sprintf("exports/%s/fulfillment-%s-%s.zip",
		now.Format("2006/01/02"), now.Format("150405"), uuid.NewString()[:8]))
	if err := s.storage.Upload(ctx, key, buf.Bytes(), ContentTypeZip); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.config.ExportURLExpiry)
	if err != nil {
		telemetry.RecordError(span, err)
		// an unreachable object is useless
		if delErr := s.storage.DeleteObject(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("failed to remove orphaned export",
				zap.String("object_key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrObjectKey, key)
	telemetry.SetOK(span)

	s.logger.Info("bulk export stored",
		zap.String("object_key", key),
		zap.Int64("bytes", result.Bytes))

	return &StoredExportResponse{
		ObjectKey:       key,
		DownloadURL:     url,
		ExpiresAt:       expiresAt,
		Bytes:           result.Bytes,
		RequestedOrders: result.RequestedOrders,
		ExportedOrders:  result.ExportedOrders,
		FailedOrders:    result.FailedOrders,
	}, nil
}

func (s *FulfillmentService) validateBatch(orderIDs []uuid.UUID) error {
	if len(orderIDs) > s.config.MaxBulkOrders {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Bulk export is limited to %d orders, got %d", s.config.MaxBulkOrders, len(orderIDs)))
	}
	seen := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if _, ok := seen[id]; ok {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Order %s is listed more than once", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// bulkJob is one order of a bulk export. The worker fills it in and closes
// done; the archive writer reads it afterwards.
type bulkJob struct {
	id   uuid.UUID
	data *orderData
	docs *orderDocuments
	row  fulfillment.SummaryRow
	err  error
	done chan struct{}
}

// dispatch renders jobs on a bounded worker pool. The returned channel is
// closed once every worker has finished.
func (s *FulfillmentService) dispatch(ctx context.Context, jobs []*bulkJob) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var g errgroup.Group
		g.SetLimit(s.config.BulkWorkers)
		for _, job := range jobs {
			g.Go(func() error {
				defer close(job.done)
				s.runJob(ctx, job)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return finished
}

func (s *FulfillmentService) runJob(ctx context.Context, job *bulkJob) {
	data, err := s.fetch(ctx, job.id)
	job.data = data
	job.row = fulfillment.NewSummaryRow(job.id, data.order, data.user, data.qr)
	if err != nil {
		job.err = err
		return
	}
	job.docs, job.err = s.renderOrder(ctx, data)
}

func addBulkEntries(bundler *archive.Bundler, number string, job *bulkJob) error {
	modified := job.data.order.CreatedAt
	if err := bundler.Add(archive.BulkOrderDocumentEntry(number), modified, job.docs.sheet); err != nil {
		return err
	}
	if job.docs.label != nil {
		return bundler.Add(archive.BulkDeliveryLabelEntry(number), modified, job.docs.label)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// =============================================================================
// Fetching
// =============================================================================

// orderData is everything fetched for one order. user is nil for guest
// orders.
type orderData struct {
	id    uuid.UUID
	order *fulfillment.OrderView
	user  *fulfillment.UserView
	qr    *fulfillment.QrCodeView
}

// fetch loads an order, its customer and its QR code. The user and QR code
// are looked up independently so a caller gets everything that could be
// loaded along with the first failure.
func (s *FulfillmentService) fetch(ctx context.Context, orderID uuid.UUID) (*orderData, error) {
	data := &orderData{id: orderID}

	order, err := s.fetchOrder(ctx, orderID)
	if err != nil {
		return data, err
	}
	data.order = order

	user, userErr := s.fetchUser(ctx, order)
	data.user = user

	qr, err := s.qrCodes.FindByID(ctx, order.QrCodeID)
	if err != nil {
		err = fmt.Errorf("failed to load QR code of order %s: %w", order.Number(), err)
	}
	data.qr = qr

	if userErr != nil {
		return data, userErr
	}
	return data, err
}

func (s *FulfillmentService) fetchOrder(ctx context.Context, orderID uuid.UUID) (*fulfillment.OrderView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", fulfillment.OrderNumber(orderID), err)
	}
	return order, nil
}

// fetchUser returns nil without error for guest orders
func (s *FulfillmentService) fetchUser(ctx context.Context, order *fulfillment.OrderView) (*fulfillment.UserView, error) {
	if order.UserID == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, *order.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer of order %s: %w", order.Number(), err)
	}
	return user, nil
}

// =============================================================================
// Rendering
// =============================================================================

type orderDocuments struct {
	plan  fulfillment.LayoutPlan
	sheet []byte
	label []byte // nil for small orders
}

// renderOrder renders the order sheet and, for large orders, the label
func (s *FulfillmentService) renderOrder(ctx context.Context, data *orderData) (*orderDocuments, error) {
	plan, err := fulfillment.PlanLayout(data.order.Quantity)
	if err != nil {
		return nil, err
	}
	docs := &orderDocuments{plan: plan}

	docs.sheet, err = s.renderSheet(ctx, data, plan)
	if err != nil {
		return nil, err
	}
	if plan.IsLarge() {
		docs.label, err = s.renderLabel(ctx, data)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *FulfillmentService) renderSheet(ctx context.Context, data *orderData, plan fulfillment.LayoutPlan) ([]byte, error) {
	png, err := s.encodeSymbol(ctx, data.qr, plan)
	if err != nil {
		return nil, err
	}

	doc, err := s.sheets.Compose(&printing.OrderSheet{
		Plan:   plan,
		Order:  data.order,
		User:   data.user,
		QrCode: data.qr,
		Symbol: png,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compose order sheet: %w", err)
	}

	res, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render order sheet: %w", err)
	}
	s.logger.Debug("order sheet rendered",
		zap.String("order_id", data.id.String()),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res.PDFData, nil
}

func (s *FulfillmentService) renderLabel(ctx context.Context, data *orderData) ([]byte, error) {
	doc, err := s.labels.Compose(&printing.ShippingLabel{Order: data.order, User: data.user})
	if err != nil {
		return nil, fmt.Errorf("failed to compose shipping label: %w", err)
	}
	res, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render shipping label: %w", err)
	}
	return res.PDFData, nil
}

// encodeSymbol rasterizes the QR code once per order at the configured DPI.
// Every cell of the sheet reuses the same image.
func (s *FulfillmentService) encodeSymbol(ctx context.Context, qr *fulfillment.QrCodeView, plan fulfillment.LayoutPlan) ([]byte, error) {
	if qr == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "qr code not found")
	}
	fg, err := symbol.ParseHexColor(qr.ForegroundColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeEncodingFailed, "Invalid symbol foreground color"), err)
	}
	bg, err := symbol.ParseHexColor(qr.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeEncodingFailed, "Invalid symbol background color"), err)
	}

	sizePx := SymbolPixels(plan.SymbolSize, s.config.SymbolDPI)
	png, err := s.encoder.Encode(ctx, qr.ScanURL(s.config.ShortLinkBaseURL), sizePx, fg, bg)
	if err != nil {
		if errors.Is(err, shared.ErrEncodingFailed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError(shared.CodeEncodingFailed, "Failed to encode symbol"), err)
	}
	return png, nil
}

// SymbolPixels converts a symbol size in points to raster pixels at dpi
func SymbolPixels(sizePt float64, dpi int) int {
	return int(math.Ceil(sizePt * float64(dpi) / 72))
}
