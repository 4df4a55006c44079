package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/api"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
)

func ginContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := ginContext()
	api.Success(c, gin.H{"id": "req-001"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":0`)
	assert.Contains(t, w.Body.String(), "req-001")
}

func TestError_ClampsInvalidStatus(t *testing.T) {
	c, w := ginContext()
	api.Error(c, 200, "weird", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWorkflowError_StatusMapping(t *testing.T) {
	tests := []struct {
		code   workflow.ErrorCode
		status int
	}{
		{workflow.CodeConcurrentModification, http.StatusConflict},
		{workflow.CodeInvalidTransition, http.StatusUnprocessableEntity},
		{workflow.CodeGateNotSatisfied, http.StatusUnprocessableEntity},
		{workflow.CodeDuplicateApprover, http.StatusUnprocessableEntity},
		{workflow.CodeReconciliationMatch, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			c, w := ginContext()
			api.WorkflowError(c, workflow.NewError(tt.code, "req-001", "boom"))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), string(tt.code))
		})
	}
}

func TestWorkflowError_UnknownError(t *testing.T) {
	c, w := ginContext()
	api.WorkflowError(c, errors.New("database on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "operation failed")
}
