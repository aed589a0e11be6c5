package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/cli"
	"github.com/Freeeeeet/lesson_scheduler/internal/config"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

func main() {
	if err := run(); err != nil {
		if kind := service.KindOf(err); kind != "" {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	open := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		logger := app.NewLogger(cfg.Environment)
		deps, err := app.New(ctx, cfg, logger)
		if err != nil {
			_ = logger.Sync()
			return nil, err
		}
		return deps, nil
	}

	return cli.NewApp(open).ExecuteContext(context.Background(), os.Args[1:], os.Stdout)
}
