package workflow_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/workflow"
)

func TestError_Message(t *testing.T) {
	err := workflow.NewError(workflow.CodeInvalidTransition, "req-001", "cannot move from %s to %s", "cotacao", "recebimento")
	assert.Equal(t, "invalid_transition: request req-001: cannot move from cotacao to recebimento", err.Error())

	err = workflow.NewError(workflow.CodeReconciliationMatch, "", "item without price")
	assert.Equal(t, "reconciliation_match_error: item without price", err.Error())
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, workflow.NewError(workflow.CodeConcurrentModification, "req-001", "version mismatch").Retryable())
	assert.False(t, workflow.NewError(workflow.CodeInvalidTransition, "req-001", "bad move").Retryable())
	assert.False(t, workflow.NewError(workflow.CodeGateNotSatisfied, "req-001", "gate open").Retryable())
	assert.False(t, workflow.NewError(workflow.CodeDuplicateApprover, "req-001", "same actor").Retryable())
}

func TestCodeOf_Wrapped(t *testing.T) {
	inner := workflow.NewError(workflow.CodeDuplicateApprover, "req-001", "same actor twice")
	wrapped := fmt.Errorf("submit approval: %w", inner)

	code, ok := workflow.CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, workflow.CodeDuplicateApprover, code)

	assert.True(t, workflow.IsCode(wrapped, workflow.CodeDuplicateApprover))
	assert.False(t, workflow.IsCode(wrapped, workflow.CodeInvalidTransition))

	_, ok = workflow.CodeOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}
