package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"tableside/internal/app"
	"tableside/internal/config"
	"tableside/internal/logger"
)

func main() {
	cliApp := &cli.App{
		Name:  "tableside",
		Usage: "restaurant table and order workflow service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the API server",
				Action: func(c *cli.Context) error {
					cfg, log, err := bootstrap()
					if err != nil {
						return err
					}
					ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
					defer cancel()
					return app.Run(ctx, cfg, log)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database schema migrations",
				Action: func(c *cli.Context) error {
					cfg, log, err := bootstrap()
					if err != nil {
						return err
					}
					return app.Migrate(c.Context, cfg, log)
				},
			},
		},
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		logger.New("error").WithError(err).Fatal("service exited")
	}
}

func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}
