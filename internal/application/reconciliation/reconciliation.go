package reconciliation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// Decision revisión humana de una línea. Las líneas sin decisión conservan el valor por
// defecto: aceptadas si fueron auto-aceptadas.
type Decision struct {
	Line      int    `json:"line"`
	Accepted  bool   `json:"accepted"`
	ItemID    string `json:"item_id,omitempty"`    // reemplaza el candidato sugerido
	CreateNew bool   `json:"create_new,omitempty"` // crear un ítem nuevo con los datos de la línea
}

// acceptedLine línea que se confirmará, con su destino ya resuelto.
type acceptedLine struct {
	ItemID    string
	CreateNew bool
}

// Reconciliation un documento importado en tránsito hacia el inventario.
// No es seguro para uso concurrente.
type Reconciliation struct {
	ID         string
	Document   *entity.ImportedDocument
	State      State
	Candidates []entity.MatchCandidate
	Warnings   []Warning

	accepted map[int]acceptedLine
}

// New crea una conciliación en estado Parsed.
func New(doc *entity.ImportedDocument) (*Reconciliation, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: documento vacío", domain.ErrValidation)
	}
	return &Reconciliation{
		ID:       uuid.NewString(),
		Document: doc,
		State:    StateParsed,
	}, nil
}

func (r *Reconciliation) transition(to State) error {
	if !canTransition(r.State, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, r.State, to)
	}
	r.State = to
	return nil
}

// fail lleva la conciliación a Failed si el estado actual lo permite.
func (r *Reconciliation) fail() {
	_ = r.transition(StateFailed)
}

// Review aplica las decisiones y deja la conciliación en Reviewed.
// Sin líneas aceptadas devuelve ErrNothingToCommit y pasa a Failed.
func (r *Reconciliation) Review(decisions []Decision) error {
	if r.State != StateMatched {
		return fmt.Errorf("%w: revisar requiere estado matched, actual %s", domain.ErrInvalidTransition, r.State)
	}

	accepted := make(map[int]acceptedLine, len(r.Candidates))
	for _, c := range r.Candidates {
		if c.AutoAccepted && c.HasItem() {
			accepted[c.Line] = acceptedLine{ItemID: c.ItemID}
		}
	}

	seen := make(map[int]bool, len(decisions))
	for _, d := range decisions {
		if d.Line < 0 || d.Line >= len(r.Candidates) {
			return fmt.Errorf("%w: línea %d fuera de rango", domain.ErrValidation, d.Line)
		}
		if seen[d.Line] {
			return fmt.Errorf("%w: decisión repetida para la línea %d", domain.ErrValidation, d.Line)
		}
		seen[d.Line] = true

		if !d.Accepted {
			delete(accepted, d.Line)
			continue
		}
		switch c := r.Candidates[d.Line]; {
		case d.CreateNew:
			accepted[d.Line] = acceptedLine{CreateNew: true}
		case d.ItemID != "":
			accepted[d.Line] = acceptedLine{ItemID: d.ItemID}
		case c.HasItem():
			accepted[d.Line] = acceptedLine{ItemID: c.ItemID}
		default:
			accepted[d.Line] = acceptedLine{CreateNew: true}
		}
	}

	if len(accepted) == 0 {
		r.fail()
		return domain.ErrNothingToCommit
	}
	r.accepted = accepted
	return r.transition(StateReviewed)
}

// AcceptedLines número de líneas que se confirmarán.
func (r *Reconciliation) AcceptedLines() int { return len(r.accepted) }
