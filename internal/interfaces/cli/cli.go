// Package cli implementa los subcomandos del binario reconcile.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/bootstrap"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
)

// BuildFunc arma los servicios; quien llama libera el almacenamiento con Services.Close.
type BuildFunc func(ctx context.Context) (*bootstrap.Services, error)

// MigrateFunc aplica el esquema y devuelve una descripción del resultado.
type MigrateFunc func(ctx context.Context) (string, error)

// App estado compartido por los subcomandos.
type App struct {
	Build    BuildFunc
	Migrate  MigrateFunc
	Renderer reconciliation.ReportRenderer // opcional, para commit -pdf
	Out      io.Writer
	Err      io.Writer
}

// Register registra los subcomandos en c.
func (a *App) Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&migrateCmd{app: a}, "storage")

	c.Register(&itemsCmd{app: a}, "catalog")
	c.Register(&moveCmd{app: a}, "catalog")
	c.Register(&historyCmd{app: a}, "catalog")

	c.Register(&matchCmd{app: a}, "documents")
	c.Register(&commitCmd{app: a}, "documents")
}

func (a *App) stdout() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Err != nil {
		return a.Err
	}
	return os.Stderr
}

// fail imprime el error con su código estable y devuelve ExitFailure.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.stderr(), "error [%s]: %v\n", domain.Code(err), err)
	return subcommands.ExitFailure
}

func (a *App) services(ctx context.Context) (*bootstrap.Services, error) {
	if a.Build == nil {
		return nil, errors.New("servicios no configurados")
	}
	svc, err := a.Build(ctx)
	if err != nil {
		return nil, err
	}
	if svc.Close == nil {
		svc.Close = func() {}
	}
	return svc, nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodifica el archivo path en v. "-" lee de stdin.
func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, path, err)
	}
	return nil
}

func requireFlag(f *flag.FlagSet, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: falta -%s (ver %s -help)", domain.ErrValidation, name, f.Name())
	}
	return nil
}

func validation(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
