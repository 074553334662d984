package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-reconciliation/internal/bootstrap"
	infrapdf "github.com/jhoicas/stock-reconciliation/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-reconciliation/internal/interfaces/cli"
	"github.com/jhoicas/stock-reconciliation/pkg/config"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	// Los logs van a stderr: stdout queda para el JSON de salida.
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})

	app := &cli.App{
		Build: func(ctx context.Context) (*bootstrap.Services, error) {
			return bootstrap.Build(ctx, cfg, log)
		},
		Migrate: func(ctx context.Context) (string, error) {
			return bootstrap.Migrate(ctx, cfg)
		},
		Renderer: infrapdf.NewCommitReportGenerator(),
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	app.Register(commander)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
