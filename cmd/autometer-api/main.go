// README: Entry point; loads config, wires stores and services, serves the HTTP API until signalled.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"autometer/internal/config"
	httptransport "autometer/internal/http"
	"autometer/internal/infra"
	"autometer/internal/logging"
	"autometer/internal/maps"
	"autometer/internal/modules/account"
	"autometer/internal/modules/fare"
	"autometer/internal/modules/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("autometer-api exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		fareStore    fare.Repository
		ledgerStore  ledger.Repository
		accountStore account.Repository
	)
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.Timeout)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		fareStore, ledgerStore, accountStore = pgStores(dbPool)
	} else {
		log.Warn("AUTOMETER_DB_DSN not set; using in-memory stores, data is lost on restart")
		fareStore, ledgerStore, accountStore = fare.NewMemoryStore(), ledger.NewMemoryStore(), account.NewMemoryStore()
	}

	var fareCache fare.Cache
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; fare cache disabled", "error", err)
		} else {
			fareCache = fare.NewRedisCache(redisClient, cfg.Fare.CacheTTL)
		}
	}

	var distances fare.DistanceResolver
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			return err
		}
		distances = routes
	}

	verifier, issuer, err := buildAuth(ctx, cfg)
	if err != nil {
		return err
	}

	accountSvc := account.NewService(accountStore, issuer, log)
	fareSvc := fare.NewService(fare.Deps{
		Store:     fareStore,
		Cache:     fareCache,
		Distances: distances,
		Config:    cfg.Fare,
		Logger:    log,
	})
	ledgerSvc := ledger.NewService(ledgerStore, accountSvc, cfg.Ledger, log)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Fares:          fareSvc,
		Ledger:         ledgerSvc,
		Accounts:       accountSvc,
		Verifier:       verifier,
		Logger:         log,
		RequestTimeout: cfg.DB.Timeout,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTP.Addr, "auth_provider", cfg.Auth.Provider)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func pgStores(db *pgxpool.Pool) (fare.Repository, ledger.Repository, account.Repository) {
	return fare.NewStore(db), ledger.NewStore(db), account.NewStore(db)
}

// buildAuth returns the bearer-token verifier and, for the jwt provider, the
// issuer used at login. Firebase sessions are issued by Firebase itself.
func buildAuth(ctx context.Context, cfg config.Config) (infra.TokenVerifier, account.TokenIssuer, error) {
	if cfg.Auth.Provider == config.AuthProviderFirebase {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Auth.Firebase.ProjectID, cfg.Auth.Firebase.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return verifier, nil, nil
	}
	jwtSvc := infra.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.TTL)
	return jwtSvc, jwtSvc, nil
}
