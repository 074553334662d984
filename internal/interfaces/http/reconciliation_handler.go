package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

// ReconciliationHandler expone matching y confirmación de documentos de proveedor (protegido).
type ReconciliationHandler struct {
	orchestrator *reconciliation.Orchestrator
	renderer     reconciliation.ReportRenderer
}

// NewReconciliationHandler construye el handler. renderer nil deshabilita el PDF.
func NewReconciliationHandler(o *reconciliation.Orchestrator, renderer reconciliation.ReportRenderer) *ReconciliationHandler {
	return &ReconciliationHandler{orchestrator: o, renderer: renderer}
}

// Match godoc
// @Summary      Emparejar líneas de un documento contra el catálogo
// @Description  No modifica el inventario. Incluye costo unitario efectivo (con flete prorrateado) y advertencias de totales.
// @Tags         reconciliations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.ImportedDocument  true  "Documento extraído"
// @Success      200   {object}  reconciliation.MatchResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reconciliations/match [post]
func (h *ReconciliationHandler) Match(c *fiber.Ctx) error {
	var doc entity.ImportedDocument
	if err := c.BodyParser(&doc); err != nil {
		return badBody(c)
	}
	out, err := h.orchestrator.ResolveMatches(c.Context(), &doc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Commit godoc
// @Summary      Confirmar un documento en el inventario
// @Description  Una entrada por línea aceptada. 200 si todas se confirmaron, 207 si alguna falló.
// @Tags         reconciliations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CommitRequest  true  "Documento y decisiones de revisión"
// @Success      200   {object}  reconciliation.CommitReport
// @Success      207   {object}  reconciliation.CommitReport
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reconciliations/commit [post]
func (h *ReconciliationHandler) Commit(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CommitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var decisions []reconciliation.Decision
	if len(in.Decisions) > 0 {
		decisions = make([]reconciliation.Decision, 0, len(in.Decisions))
		for _, d := range in.Decisions {
			decisions = append(decisions, reconciliation.Decision{
				Line:      d.Line,
				Accepted:  d.Accepted,
				ItemID:    d.ItemID,
				CreateNew: d.CreateNew,
			})
		}
	}

	report, err := h.orchestrator.CommitReconciliation(c.Context(), &in.Document, decisions, actorID)
	switch {
	case err == nil:
		return c.JSON(report)
	case report != nil && errors.Is(err, domain.ErrCommitPartialFailure):
		return c.Status(fiber.StatusMultiStatus).JSON(report)
	case report != nil:
		// cancelado a mitad: el reporte dice qué quedó confirmado
		return c.Status(StatusFor(err)).JSON(report)
	default:
		return writeError(c, err)
	}
}

// ReportPDF godoc
// @Summary      Representación PDF de un reporte de confirmación
// @Tags         reconciliations
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  reconciliation.CommitReport  true  "Reporte devuelto por /commit"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reconciliations/report.pdf [post]
func (h *ReconciliationHandler) ReportPDF(c *fiber.Ctx) error {
	if h.renderer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "generación de PDF no configurada"})
	}
	var report reconciliation.CommitReport
	if err := c.BodyParser(&report); err != nil {
		return badBody(c)
	}
	if report.ReconciliationID == "" {
		return writeError(c, fmt.Errorf("%w: reconciliation_id es obligatorio", domain.ErrValidation))
	}
	pdf, err := h.renderer.Generate(c.Context(), &report)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "conciliacion-"+report.ReconciliationID+".pdf"))
	return c.Send(pdf)
}
