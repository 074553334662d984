package dto

import "github.com/jhoicas/stock-reconciliation/internal/domain/entity"

// DecisionRequest decisión del revisor sobre una línea del documento.
type DecisionRequest struct {
	Line      int    `json:"line"`
	Accepted  bool   `json:"accepted"`
	ItemID    string `json:"item_id,omitempty"`
	CreateNew bool   `json:"create_new,omitempty"`
}

// CommitRequest body para POST /api/reconciliations/commit.
// Sin decisiones se confirman solo las líneas auto-aceptadas.
type CommitRequest struct {
	Document  entity.ImportedDocument `json:"document"`
	Decisions []DecisionRequest       `json:"decisions,omitempty"`
}
