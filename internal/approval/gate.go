package approval

import "fmt"

// Gate identifies one of the two approval gates in the workflow.
type Gate string

const (
	GateA1 Gate = "A1"
	GateA2 Gate = "A2"
)

// ParseGate converts a string into a Gate.
func ParseGate(s string) (Gate, error) {
	switch Gate(s) {
	case GateA1:
		return GateA1, nil
	case GateA2:
		return GateA2, nil
	}
	return "", fmt.Errorf("unknown approval gate: %q", s)
}

// GateState is the explicit tagged state of one approval gate cycle.
// Invalid flag combinations are unrepresentable: a gate is in exactly
// one of these states at any time.
type GateState string

const (
	// GatePending means no decision has been recorded for the cycle.
	GatePending GateState = "pending"
	// GateApprovedStep1 means the first of two required signatures
	// was recorded; the gate is not yet satisfied.
	GateApprovedStep1 GateState = "approved_step1"
	// GateApprovedSingle means a single signature satisfied the gate.
	GateApprovedSingle GateState = "approved_single"
	// GateApprovedFinal means both signatures of a dual approval were
	// recorded by distinct approvers.
	GateApprovedFinal GateState = "approved_final"
	// GateRejected is terminal for the cycle and sends the request
	// back for correction.
	GateRejected GateState = "rejected"
)

// Satisfied reports whether the gate reached an approved terminal
// state, allowing the phase to advance past it.
func (s GateState) Satisfied() bool {
	return s == GateApprovedSingle || s == GateApprovedFinal
}

// Terminal reports whether the cycle accepts no further decisions.
func (s GateState) Terminal() bool {
	return s.Satisfied() || s == GateRejected
}
