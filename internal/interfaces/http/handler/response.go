package handler

import (
	"github.com/qrcampaign/fulfillment/internal/application/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/dto"
)

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// LayoutPlanAPIResponse documents the layout endpoint
type LayoutPlanAPIResponse = APIResponse[fulfillment.LayoutPlanResponse]

// StoredExportAPIResponse documents the stored export endpoint
type StoredExportAPIResponse = APIResponse[fulfillment.StoredExportResponse]
