// Package app wires configuration, storage, messaging and HTTP into a running
// service.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"tableside/internal/config"
	"tableside/internal/dashboard"
	"tableside/internal/database"
	"tableside/internal/inventory"
	"tableside/internal/logger"
	"tableside/internal/menu"
	"tableside/internal/mq"
	"tableside/internal/orders"
	"tableside/internal/server"
	"tableside/internal/settings"
	"tableside/internal/tables"
)

// Run starts the API server and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	db, err := database.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	var pub mq.Publisher = mq.Nop{}
	if cfg.RabbitMQ.Enabled {
		client, err := mq.Dial(cfg.RabbitMQURL())
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.DeclareTopology(); err != nil {
			return err
		}
		pub = client
		logger.WithComponent(log, "app").Info("message broker connected")
	} else {
		logger.WithComponent(log, "app").Warn("message broker disabled, events will be dropped")
	}

	tablesSvc := tables.NewService(tables.NewRepository(db), pub, log)
	menuSvc := menu.NewService(menu.NewRepository(db), log)
	inventorySvc := inventory.NewService(inventory.NewRepository(db), log)
	ordersSvc := orders.NewService(orders.NewRepository(db), tablesSvc, pub, log, cfg.Orders.SubmitTimeout)
	dashboardSvc := dashboard.NewService(tablesSvc, ordersSvc, inventorySvc, menuSvc)
	profileRepo := settings.NewRepository(db)

	srv := server.New(cfg.Addr(), log, tablesSvc, menuSvc, inventorySvc, ordersSvc, dashboardSvc, profileRepo)
	return srv.Run(ctx)
}

// Migrate connects to the database and applies pending schema migrations.
func Migrate(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	db, err := database.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.WithComponent(log, "app").Info("migrations applied")
	return nil
}
