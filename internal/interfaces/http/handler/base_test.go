package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/qrcampaign/fulfillment/internal/application/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/domain/shared"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/printing"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/dto"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Created(c, map[string]string{"object_key": "exports/a.zip"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "BadRequest",
			method:       func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid request") },
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeBadRequest,
		},
		{
			name:         "NotFound",
			method:       func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "Order not found") },
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "InternalError",
			method:       func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "Server error") },
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
		{
			name:         "ServiceUnavailable",
			method:       func(h *BaseHandler, c *gin.Context) { h.ServiceUnavailable(c, "Storage offline") },
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  dto.ErrCodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			tt.method(h, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set(middleware.RequestIDKey, "test-request-123")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, "test-request-123", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerErrorWithCode(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	h.ErrorWithCode(c, "ENCODING_FAILED", "Symbol too dense")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dto.ErrCodeEncodingFailed, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedCode    int
		expectedErr     string
		expectedMessage string
	}{
		{
			name:            "not found",
			err:             shared.ErrNotFound,
			expectedCode:    http.StatusNotFound,
			expectedErr:     dto.ErrCodeNotFound,
			expectedMessage: "Resource not found",
		},
		{
			name:            "wrapped domain error",
			err:             fmt.Errorf("failed to load order: %w", shared.NewDomainError(shared.CodeNotFound, "order not found")),
			expectedCode:    http.StatusNotFound,
			expectedErr:     dto.ErrCodeNotFound,
			expectedMessage: "order not found",
		},
		{
			name:         "invalid input",
			err:          shared.NewDomainError(shared.CodeInvalidInput, "quantity must be positive"),
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidInput,
		},
		{
			name:         "encoding failed",
			err:          shared.ErrEncodingFailed,
			expectedCode: http.StatusBadGateway,
			expectedErr:  dto.ErrCodeEncodingFailed,
		},
		{
			name:         "render error",
			err:          printing.NewRenderError(printing.ErrCodeMissingImage, "image missing", nil),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeRenderFailed,
		},
		{
			name:         "cancelled render",
			err:          printing.NewRenderError(printing.ErrCodeCancelled, "cancelled", context.Canceled),
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  dto.ErrCodeUnavailable,
		},
		{
			name:         "storage unavailable",
			err:          fulfillment.ErrStorageUnavailable,
			expectedCode: http.StatusServiceUnavailable,
			expectedErr:  dto.ErrCodeUnavailable,
		},
		{
			name:            "unknown error",
			err:             assert.AnError,
			expectedCode:    http.StatusInternalServerError,
			expectedErr:     dto.ErrCodeInternal,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, resp.Error.Message)
			}
		})
	}
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.Bytes())
}
