package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
)

// Response is the unified success envelope.
type Response struct {
	Code    int         `json:"code"`    // 0 means success
	Message string      `json:"message"` // response message
	Data    interface{} `json:"data"`    // response payload
}

// ErrorResponse is the unified error envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`             // HTTP-like error code
	Message string `json:"message"`          // error message
	Detail  string `json:"detail,omitempty"` // optional detail
}

// Success writes a success envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope.
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		statusCode = code
	}

	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}

// WorkflowError maps a workflow failure to the right HTTP status.
// ConcurrentModification gets 409 so callers know it is retryable;
// validation-class failures get 422; anything else is 500.
func WorkflowError(c *gin.Context, err error) {
	code, ok := workflow.CodeOf(err)
	if !ok {
		Error(c, http.StatusInternalServerError, "operation failed", err.Error())
		return
	}

	switch code {
	case workflow.CodeConcurrentModification:
		Error(c, http.StatusConflict, string(code), err.Error())
	case workflow.CodeInvalidTransition,
		workflow.CodeGateNotSatisfied,
		workflow.CodeDuplicateApprover,
		workflow.CodeReconciliationMatch:
		Error(c, http.StatusUnprocessableEntity, string(code), err.Error())
	default:
		Error(c, http.StatusInternalServerError, string(code), err.Error())
	}
}
