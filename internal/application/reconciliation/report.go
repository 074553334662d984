package reconciliation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// ReportRenderer genera la representación imprimible (PDF) de un CommitReport.
type ReportRenderer interface {
	Generate(ctx context.Context, report *CommitReport) ([]byte, error)
}

// Estado final de cada línea en el reporte.
const (
	LineCommitted = "committed"
	LineFailed    = "failed"
	LineSkipped   = "skipped"  // no aceptada en la revisión
	LineCanceled  = "canceled" // no procesada por cancelación
)

// CommitLineResult resultado de una línea del documento.
type CommitLineResult struct {
	Line             int             `json:"line"`
	Description      string          `json:"description"`
	Status           string          `json:"status"`
	ItemID           string          `json:"item_id,omitempty"`
	NewCatalogItemID string          `json:"new_catalog_item_id,omitempty"`
	NewItemCode      string          `json:"new_item_code,omitempty"`
	MovementID       string          `json:"movement_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Code             string          `json:"code,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Committed indica si la línea llegó al inventario.
func (l CommitLineResult) Committed() bool { return l.Status == LineCommitted }

// CommitReport reporte completo de una confirmación, una entrada por línea del documento.
type CommitReport struct {
	ReconciliationID  string             `json:"reconciliation_id"`
	DocumentReference string             `json:"document_reference"`
	State             State              `json:"state"`
	Lines             []CommitLineResult `json:"lines"`
	Committed         int                `json:"committed"`
	Failed            int                `json:"failed"`
	Skipped           int                `json:"skipped"`
	Warnings          []Warning          `json:"warnings,omitempty"`
}

func (r *CommitReport) add(l CommitLineResult) {
	switch l.Status {
	case LineCommitted:
		r.Committed++
	case LineFailed, LineCanceled:
		r.Failed++
	case LineSkipped:
		r.Skipped++
	}
	r.Lines = append(r.Lines, l)
}

// MatchResult salida del matching, antes de la revisión.
type MatchResult struct {
	ReconciliationID    string                  `json:"reconciliation_id"`
	DocumentReference   string                  `json:"document_reference"`
	State               State                   `json:"state"`
	AutoAcceptThreshold float64                 `json:"auto_accept_threshold"`
	Candidates          []entity.MatchCandidate `json:"candidates"`
	Warnings            []Warning               `json:"warnings,omitempty"`
}
