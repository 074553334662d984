package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.234.567,89", formatAmount(decimal.RequireFromString("1234567.891"), 2))
	assert.Equal(t, "5,67", formatAmount(decimal.RequireFromString("5.666"), 2))
	assert.Equal(t, "-1.000,00", formatAmount(decimal.RequireFromString("-1000"), 2))
	assert.Equal(t, "0,00", formatAmount(decimal.RequireFromString("-0.001"), 2))
}

func TestGenerate(t *testing.T) {
	line := 1
	report := &reconciliation.CommitReport{
		ReconciliationID:  "rec-1",
		DocumentReference: "Proveedor #NF-1",
		State:             reconciliation.StateCommitted,
		Lines: []reconciliation.CommitLineResult{
			{Line: 0, Description: "Filtro", Status: reconciliation.LineCommitted, Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(5)},
			{Line: 1, Description: "Parafuso", Status: reconciliation.LineFailed, Code: "VALIDATION"},
		},
		Committed: 1,
		Failed:    1,
		Warnings:  []reconciliation.Warning{{Code: "LINE_TOTAL_MISMATCH", Line: &line, Message: "x"}},
	}
	out, err := NewCommitReportGenerator().Generate(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewCommitReportGenerator().Generate(context.Background(), nil)
	assert.Error(t, err)
}
