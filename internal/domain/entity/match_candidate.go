package entity

import "github.com/shopspring/decimal"

// Formas en que se obtuvo un candidato.
const (
	MatchedByCode        = "code"
	MatchedByDescription = "description"
	MatchedByNone        = "none"
)

// MatchCandidate decisión transitoria por línea importada, vive entre el matching y la confirmación.
type MatchCandidate struct {
	Line              int             `json:"line"` // índice 0-based en el documento
	ItemID            string          `json:"item_id,omitempty"`
	ItemDescription   string          `json:"item_description,omitempty"`
	Score             float64         `json:"score"`
	MatchedBy         string          `json:"matched_by"`
	AutoAccepted      bool            `json:"auto_accepted"`
	RequiresNewItem   bool            `json:"requires_new_item"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ApportionedCharge decimal.Decimal `json:"apportioned_charge"`
	NeedsReview       bool            `json:"needs_review"`
}

// HasItem indica si el candidato referencia un ítem del catálogo.
func (c *MatchCandidate) HasItem() bool { return c.ItemID != "" }
