package printing

import (
	"context"
	"time"
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer serializes a composed Document to PDF
type PDFRenderer interface {
	// Render converts a document to PDF bytes. The same document always
	// yields the same bytes.
	Render(ctx context.Context, doc *Document) (*RenderResult, error)
}

// RenderError represents an error during document composition or rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeMissingImage    = "MISSING_IMAGE"
	ErrCodeCancelled       = "RENDER_CANCELLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
