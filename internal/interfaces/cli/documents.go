package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
)

type matchCmd struct {
	app  *App
	file string
}

func (*matchCmd) Name() string     { return "match" }
func (*matchCmd) Synopsis() string { return "empareja las líneas de un documento contra el catálogo" }
func (*matchCmd) Usage() string {
	return `reconcile match -f <documento.json>

  Imprime los candidatos por línea (ítem sugerido, puntaje, costo efectivo con
  flete prorrateado) y las advertencias de totales. No modifica el inventario.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Documento extraído en JSON (\"-\" para stdin).")
}

func (c *matchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlag(f, "f", c.file); err != nil {
		return c.app.fail(err)
	}
	var doc entity.ImportedDocument
	if err := readJSON(c.file, &doc); err != nil {
		return c.app.fail(err)
	}
	svc, err := c.app.services(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	defer svc.Close()

	out, err := svc.Orchestrator.ResolveMatches(ctx, &doc)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.printJSON(out); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type commitCmd struct {
	app       *App
	file      string
	decisions string
	actor     string
	pdf       string
}

func (*commitCmd) Name() string     { return "commit" }
func (*commitCmd) Synopsis() string { return "confirma un documento en el inventario" }
func (*commitCmd) Usage() string {
	return `reconcile commit -f <documento.json> [-r <decisiones.json>] [-actor <id>] [-pdf <reporte.pdf>]

  Ejecuta matching, revisión y confirmación. Sin -r se confirman solo las
  líneas auto-aceptadas. Imprime el reporte por línea; termina con error si
  alguna línea falló (las demás quedan confirmadas).
`
}

func (c *commitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Documento extraído en JSON (\"-\" para stdin).")
	f.StringVar(&c.decisions, "r", "", "Decisiones de revisión en JSON: [{\"line\":0,\"accepted\":true,\"item_id\":\"...\",\"create_new\":false}].")
	f.StringVar(&c.actor, "actor", "cli", "Actor que confirma.")
	f.StringVar(&c.pdf, "pdf", "", "Escribe además el reporte en PDF en esta ruta.")
}

func (c *commitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlag(f, "f", c.file); err != nil {
		return c.app.fail(err)
	}
	var doc entity.ImportedDocument
	if err := readJSON(c.file, &doc); err != nil {
		return c.app.fail(err)
	}
	var decisions []reconciliation.Decision
	if c.decisions != "" {
		if err := readJSON(c.decisions, &decisions); err != nil {
			return c.app.fail(err)
		}
	}
	svc, err := c.app.services(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	defer svc.Close()

	report, commitErr := svc.Orchestrator.CommitReconciliation(ctx, &doc, decisions, c.actor)
	if report == nil {
		return c.app.fail(commitErr)
	}
	if err := c.app.printJSON(report); err != nil {
		return c.app.fail(err)
	}
	if c.pdf != "" {
		if err := c.writePDF(ctx, report); err != nil {
			return c.app.fail(err)
		}
	}
	if commitErr != nil {
		if errors.Is(commitErr, domain.ErrCommitPartialFailure) {
			fmt.Fprintf(c.app.stderr(), "%d de %d líneas fallaron\n", report.Failed, report.Failed+report.Committed)
		}
		return c.app.fail(commitErr)
	}
	return subcommands.ExitSuccess
}

func (c *commitCmd) writePDF(ctx context.Context, report *reconciliation.CommitReport) error {
	if c.app.Renderer == nil {
		return errors.New("generación de PDF no configurada")
	}
	raw, err := c.app.Renderer.Generate(ctx, report)
	if err != nil {
		return fmt.Errorf("generar PDF: %w", err)
	}
	if err := os.WriteFile(c.pdf, raw, 0o644); err != nil {
		return fmt.Errorf("escribir PDF: %w", err)
	}
	return nil
}
