package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ErrorBody is the error detail carried by failed responses.
type ErrorBody struct {
	Code    apperror.Kind     `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope, aborts the chain and returns the envelope.
func Error(ctx *gin.Context, status int, message string, err interface{}) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}

// Fail converts err to the uniform error envelope. Errors without a kind are
// reported as 500 with their message passed through.
func Fail(ctx *gin.Context, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		if ae.HTTPCode() >= http.StatusInternalServerError {
			_ = ctx.Error(err)
		}
		Error(ctx, ae.HTTPCode(), ae.Message(), ErrorBody{Code: ae.Kind()})
		return
	}
	_ = ctx.Error(err)
	Error(ctx, http.StatusInternalServerError, err.Error(), ErrorBody{Code: apperror.KindInternal})
}

// BindFailed reports a request body that failed binding or validation.
func BindFailed(ctx *gin.Context, err error) {
	Error(ctx, http.StatusBadRequest, "Please provide all the fields", ErrorBody{
		Code:    apperror.KindValidation,
		Details: validation.ToDetails(err),
	})
}
