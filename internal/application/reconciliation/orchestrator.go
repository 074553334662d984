// Package reconciliation coordina la importación de un documento de proveedor: matching contra
// el catálogo, prorrateo del flete, revisión y confirmación línea por línea en el ledger.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/domain/matching"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

// Catalog acceso al catálogo que necesita la conciliación.
type Catalog interface {
	ListActive(ctx context.Context) ([]*entity.CatalogItem, error)
	CreateItem(ctx context.Context, code, description, unit string, minQty decimal.Decimal) (*entity.CatalogItem, error)
}

// MovementApplier aplica movimientos de stock (implementado por inventory.Ledger).
type MovementApplier interface {
	ApplyMovement(ctx context.Context, in appinventory.MovementInput) (*appinventory.MovementResult, error)
}

// Config parámetros de la conciliación.
type Config struct {
	Basis              inventory.Basis
	UnitCostPlaces     int32
	TotalsTolerancePct decimal.Decimal // porcentual, 1 = 1%
}

// DefaultConfig prorrateo por valor, 4 decimales y 1% de tolerancia.
func DefaultConfig() Config {
	return Config{
		Basis:              inventory.BasisValue,
		UnitCostPlaces:     4,
		TotalsTolerancePct: decimal.NewFromInt(1),
	}
}

// Orchestrator ejecuta las etapas de una conciliación.
type Orchestrator struct {
	catalog  Catalog
	ledger   MovementApplier
	resolver *matching.Resolver
	cfg      Config
	log      *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(catalog Catalog, ledger MovementApplier, resolver *matching.Resolver, cfg Config, log *logger.Logger) *Orchestrator {
	if cfg.Basis == 0 {
		cfg.Basis = inventory.BasisValue
	}
	if cfg.UnitCostPlaces < 0 {
		cfg.UnitCostPlaces = 4
	}
	if cfg.TotalsTolerancePct.IsNegative() {
		cfg.TotalsTolerancePct = decimal.Zero
	}
	return &Orchestrator{
		catalog:  catalog,
		ledger:   ledger,
		resolver: resolver,
		cfg:      cfg,
		log:      logger.OrNop(log).Component("reconciliation"),
	}
}

// Match carga el catálogo activo, prorratea el flete, resuelve cada línea y valida totales.
func (o *Orchestrator) Match(ctx context.Context, rec *Reconciliation) error {
	if rec.State != StateParsed && rec.State != StateMatched {
		return fmt.Errorf("%w: match requiere estado parsed, actual %s", domain.ErrInvalidTransition, rec.State)
	}
	doc := rec.Document

	catalog, err := o.catalog.ListActive(ctx)
	if err != nil {
		rec.fail()
		return fmt.Errorf("cargar catálogo: %w", err)
	}
	candidates, err := o.resolver.ResolveAll(ctx, doc.Items, catalog)
	if err != nil {
		rec.fail()
		return err
	}

	warnings := checkTotals(doc, o.cfg.TotalsTolerancePct)
	warnings = append(warnings, o.applyCosts(doc, candidates)...)

	rec.Candidates = candidates
	rec.Warnings = warnings
	if err := rec.transition(StateMatched); err != nil {
		return err
	}

	auto := 0
	for _, c := range candidates {
		if c.AutoAccepted {
			auto++
		}
	}
	o.log.Info().
		Str("reconciliation_id", rec.ID).
		Str("document", doc.Reference()).
		Int("lines", len(doc.Items)).
		Int("auto_accepted", auto).
		Int("warnings", len(warnings)).
		Msg("documento conciliado")
	return nil
}

// applyCosts asigna a cada candidato su costo unitario efectivo. Con flete se prorratea;
// sin flete, o si no hay base, se usa el valor unitario de la línea.
func (o *Orchestrator) applyCosts(doc *entity.ImportedDocument, candidates []entity.MatchCandidate) []Warning {
	for i, it := range doc.Items {
		candidates[i].UnitCost = it.UnitValue
	}
	freight := doc.Totals.Freight
	if freight.IsZero() {
		return nil
	}

	lines := make([]inventory.ApportionLine, len(doc.Items))
	for i, it := range doc.Items {
		lines[i] = inventory.ApportionLine{Quantity: it.Quantity, LineTotal: it.LineTotal}
	}
	results, applied := inventory.Apportion(lines, freight, o.cfg.Basis, o.cfg.UnitCostPlaces)
	if !applied {
		return []Warning{{
			Code:    WarnApportionmentSkipped,
			Message: fmt.Sprintf("flete %s sin base de prorrateo (%s)", freight, o.cfg.Basis),
		}}
	}

	var warnings []Warning
	for i, res := range results {
		if res.Skipped {
			candidates[i].NeedsReview = true
			warnings = append(warnings, lineWarning(WarnApportionmentSkipped, i, "cantidad 0, la línea no recibe flete"))
			continue
		}
		candidates[i].ApportionedCharge = res.Share
		candidates[i].UnitCost = res.UnitCost
	}
	return warnings
}

// Commit confirma las líneas aceptadas en orden del documento. Cada línea es independiente:
// una falla no revierte las anteriores ni detiene las siguientes. La cancelación solo se
// revisa entre líneas. Devuelve ErrCommitPartialFailure junto al reporte si alguna línea falló.
func (o *Orchestrator) Commit(ctx context.Context, rec *Reconciliation, actorID string) (*CommitReport, error) {
	if err := rec.transition(StateCommitting); err != nil {
		return nil, err
	}
	doc := rec.Document
	report := &CommitReport{
		ReconciliationID:  rec.ID,
		DocumentReference: doc.Reference(),
		Warnings:          append([]Warning(nil), rec.Warnings...),
	}
	// código de proveedor → ítem creado en esta confirmación
	created := make(map[string]string)
	reference := doc.Number
	if reference == "" {
		reference = doc.Reference()
	}

	for i, it := range doc.Items {
		res := CommitLineResult{
			Line:        i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCost:    rec.Candidates[i].UnitCost,
		}
		acc, ok := rec.accepted[i]
		if !ok {
			res.Status = LineSkipped
			report.add(res)
			continue
		}
		if err := ctx.Err(); err != nil {
			o.cancelRemaining(rec, report, i)
			rec.fail()
			report.State = rec.State
			o.log.Warn().Str("reconciliation_id", rec.ID).Int("line", i).Msg("confirmación cancelada")
			return report, fmt.Errorf("%w: %w", domain.ErrCanceled, err)
		}

		o.commitLine(ctx, doc, rec.Candidates[i], acc, created, reference, actorID, &res)
		if res.NewCatalogItemID != "" && res.NewItemCode == "" && strings.TrimSpace(it.SupplierCode) != "" {
			report.Warnings = append(report.Warnings, lineWarning(WarnNewItemWithoutCode, i,
				"el código %q ya pertenece a otro ítem, el ítem nuevo se creó sin código", it.SupplierCode))
		}
		if res.Committed() {
			o.log.Debug().Str("reconciliation_id", rec.ID).Int("line", i).Str("item_id", res.ItemID).Msg("línea confirmada")
		} else {
			o.log.Warn().Str("reconciliation_id", rec.ID).Int("line", i).Str("code", res.Code).Str("error", res.Error).Msg("línea rechazada")
		}
		report.add(res)
	}

	if err := rec.transition(StateCommitted); err != nil {
		return nil, err
	}
	report.State = rec.State
	o.log.Info().
		Str("reconciliation_id", rec.ID).
		Str("document", report.DocumentReference).
		Int("committed", report.Committed).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("documento confirmado")

	if report.Failed > 0 {
		return report, domain.ErrCommitPartialFailure
	}
	return report, nil
}

func (o *Orchestrator) commitLine(ctx context.Context, doc *entity.ImportedDocument, cand entity.MatchCandidate, acc acceptedLine, created map[string]string, reference, actorID string, res *CommitLineResult) {
	it := doc.Items[res.Line]
	fail := func(err error) {
		res.Status = LineFailed
		res.Code = domain.Code(err)
		res.Error = err.Error()
	}

	if !it.Quantity.IsPositive() {
		fail(fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrValidation))
		return
	}
	if res.UnitCost.IsNegative() {
		fail(fmt.Errorf("%w: costo unitario negativo", domain.ErrValidation))
		return
	}

	itemID := acc.ItemID
	if acc.CreateNew {
		id, err := o.createItem(ctx, it, cand, created, res)
		if err != nil {
			fail(err)
			return
		}
		itemID = id
	}
	res.ItemID = itemID

	unitCost := res.UnitCost
	out, err := o.ledger.ApplyMovement(ctx, appinventory.MovementInput{
		ItemID:    itemID,
		Kind:      entity.MovementEntry,
		Quantity:  it.Quantity,
		UnitCost:  &unitCost,
		Reason:    "importación de documento",
		ActorID:   actorID,
		Reference: reference,
	})
	if err != nil {
		fail(err)
		return
	}
	res.Status = LineCommitted
	res.MovementID = out.Movement.ID
}

// createItem crea el ítem de una línea marcada como nueva. Las líneas con el mismo código de
// proveedor comparten el ítem creado por la primera. Si el código ya pertenece a otro ítem,
// activo o no, el ítem se crea sin código.
func (o *Orchestrator) createItem(ctx context.Context, it entity.ImportedLineItem, cand entity.MatchCandidate, created map[string]string, res *CommitLineResult) (string, error) {
	code := strings.TrimSpace(it.SupplierCode)
	if id, ok := created[code]; ok && code != "" {
		return id, nil
	}

	try := code
	if cand.MatchedBy == entity.MatchedByCode {
		try = ""
	}
	item, err := o.catalog.CreateItem(ctx, try, it.Description, it.Unit, decimal.Zero)
	if try != "" && errors.Is(err, domain.ErrDuplicate) {
		item, err = o.catalog.CreateItem(ctx, "", it.Description, it.Unit, decimal.Zero)
	}
	if err != nil {
		return "", fmt.Errorf("crear ítem: %w", err)
	}
	if code != "" {
		created[code] = item.ID
	}
	res.NewCatalogItemID = item.ID
	res.NewItemCode = item.Code
	return item.ID, nil
}

func (o *Orchestrator) cancelRemaining(rec *Reconciliation, report *CommitReport, from int) {
	for i := from; i < len(rec.Document.Items); i++ {
		res := CommitLineResult{
			Line:        i,
			Description: rec.Document.Items[i].Description,
			Quantity:    rec.Document.Items[i].Quantity,
			UnitCost:    rec.Candidates[i].UnitCost,
		}
		if _, ok := rec.accepted[i]; ok {
			res.Status = LineCanceled
			res.Code = domain.CodeCanceled
		} else {
			res.Status = LineSkipped
		}
		report.add(res)
	}
}

// ResolveMatches ejecuta el matching de un documento sin tocar el inventario.
func (o *Orchestrator) ResolveMatches(ctx context.Context, doc *entity.ImportedDocument) (*MatchResult, error) {
	rec, err := New(doc)
	if err != nil {
		return nil, err
	}
	if err := o.Match(ctx, rec); err != nil {
		return nil, err
	}
	return &MatchResult{
		ReconciliationID:    rec.ID,
		DocumentReference:   doc.Reference(),
		State:               rec.State,
		AutoAcceptThreshold: o.resolver.Threshold(),
		Candidates:          rec.Candidates,
		Warnings:            rec.Warnings,
	}, nil
}

// CommitReconciliation ejecuta matching, revisión y confirmación de un documento.
// decisions nil confirma solo las líneas auto-aceptadas.
func (o *Orchestrator) CommitReconciliation(ctx context.Context, doc *entity.ImportedDocument, decisions []Decision, actorID string) (*CommitReport, error) {
	rec, err := New(doc)
	if err != nil {
		return nil, err
	}
	if err := o.Match(ctx, rec); err != nil {
		return nil, err
	}
	if err := rec.Review(decisions); err != nil {
		return nil, err
	}
	return o.Commit(ctx, rec, actorID)
}
