// README: Deploy-time step: applies schema migrations (including the legacy fare rewrite) and provisions the admin.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"autometer/internal/config"
	"autometer/internal/infra"
	"autometer/internal/logging"
	"autometer/internal/modules/account"
)

func main() {
	skipAdmin := flag.Bool("skip-admin", false, "apply migrations only; do not provision the admin account")
	flag.Parse()

	cfg, err := config.LoadDeploy()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *skipAdmin, log); err != nil {
		log.Error("autometer-migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, skipAdmin bool, log *slog.Logger) error {
	if cfg.DB.DSN == "" {
		return errors.New("AUTOMETER_DB_DSN is required")
	}
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.Timeout)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := infra.Migrate(ctx, dbPool, log); err != nil {
		return err
	}

	if skipAdmin {
		return nil
	}
	if cfg.Admin.Phone == "" || cfg.Admin.Password == "" {
		log.Info("AUTOMETER_ADMIN_PHONE or AUTOMETER_ADMIN_PASSWORD not set; admin provisioning skipped")
		return nil
	}
	accounts := account.NewService(account.NewStore(dbPool), nil, log)
	_, err = accounts.ProvisionAdmin(ctx, cfg.Admin.Phone, cfg.Admin.Name, cfg.Admin.Password)
	return err
}
