package phase

import "fmt"

// Phase is a workflow phase of a purchase request.
type Phase string

// Workflow phases, in default forward order.
const (
	Solicitacao     Phase = "solicitacao"
	AprovacaoA1     Phase = "aprovacao_a1"
	Cotacao         Phase = "cotacao"
	AprovacaoA2     Phase = "aprovacao_a2"
	PedidoCompra    Phase = "pedido_compra"
	Recebimento     Phase = "recebimento"
	ConfFiscal      Phase = "conf_fiscal"
	ConclusaoCompra Phase = "conclusao_compra"
	Arquivado       Phase = "arquivado"
)

// ordered is the default forward path.
var ordered = []Phase{
	Solicitacao,
	AprovacaoA1,
	Cotacao,
	AprovacaoA2,
	PedidoCompra,
	Recebimento,
	ConfFiscal,
	ConclusaoCompra,
	Arquivado,
}

// backward lists the transitions explicitly allowed for correction
// workflows, in addition to the forward path.
var backward = map[Phase][]Phase{
	AprovacaoA1:  {Solicitacao},
	Cotacao:      {Solicitacao},
	AprovacaoA2:  {Cotacao},
	PedidoCompra: {AprovacaoA2, Cotacao},
	Recebimento:  {PedidoCompra},
	ConfFiscal:   {Recebimento},
}

var indexes = func() map[Phase]int {
	m := make(map[Phase]int, len(ordered))
	for i, p := range ordered {
		m[p] = i
	}
	return m
}()

// Valid reports whether p is a member of the fixed phase set.
func Valid(p Phase) bool {
	_, ok := indexes[p]
	return ok
}

// Parse converts a string into a Phase.
func Parse(s string) (Phase, error) {
	p := Phase(s)
	if !Valid(p) {
		return "", fmt.Errorf("unknown phase: %q", s)
	}
	return p, nil
}

// Index returns the position of p on the forward path, or -1 when p is
// not a known phase.
func Index(p Phase) int {
	i, ok := indexes[p]
	if !ok {
		return -1
	}
	return i
}

// NextPhase returns the phase that follows p on the default forward
// path. The second return value is false when p is terminal or unknown.
func NextPhase(p Phase) (Phase, bool) {
	i, ok := indexes[p]
	if !ok || i == len(ordered)-1 {
		return "", false
	}
	return ordered[i+1], true
}

// IsValidTransition reports whether the workflow permits moving a
// request from one phase to another. Arquivado is terminal.
func IsValidTransition(from, to Phase) bool {
	if !Valid(from) || !Valid(to) || from == to {
		return false
	}
	if from == Arquivado {
		return false
	}
	if next, ok := NextPhase(from); ok && next == to {
		return true
	}
	for _, p := range backward[from] {
		if p == to {
			return true
		}
	}
	return false
}

// IsBackward reports whether moving from one phase to the other
// regresses the workflow.
func IsBackward(from, to Phase) bool {
	return Valid(from) && Valid(to) && Index(to) < Index(from)
}

// RequiresGate returns the approval gate phase that guards entry into
// p, if any. Entering cotacao requires the A1 gate, entering
// pedido_compra requires the A2 gate.
func RequiresGate(p Phase) (Phase, bool) {
	switch p {
	case Cotacao:
		return AprovacaoA1, true
	case PedidoCompra:
		return AprovacaoA2, true
	}
	return "", false
}

// All returns the fixed phase set in forward order.
func All() []Phase {
	out := make([]Phase, len(ordered))
	copy(out, ordered)
	return out
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}
