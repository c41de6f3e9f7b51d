package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/umalmyha/customers-mvc/internal/auth"
	"github.com/umalmyha/customers-mvc/internal/cache"
	"github.com/umalmyha/customers-mvc/internal/config"
	"github.com/umalmyha/customers-mvc/internal/infra"
	"github.com/umalmyha/customers-mvc/internal/repository"
	"github.com/umalmyha/customers-mvc/internal/service"
	"github.com/umalmyha/customers-mvc/internal/validation"
	"github.com/umalmyha/customers-mvc/migrations"
	"github.com/umalmyha/customers-mvc/pkg/db/transactor"
	"github.com/umalmyha/customers-mvc/pkg/diagnostics"
)

// @title       Customers MVC
// @version     1.0
// @description Server-rendered customer management, every page is available as JSON with Accept: application/json.
// @BasePath    /
func main() {
	cfg, err := config.Build()
	if err != nil {
		logrus.Fatalf("failed to build configuration - %v", err)
	}

	logger, err := infra.Logger(cfg.LogCfg)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	tracer, err := infra.Tracer(context.Background(), cfg.TracingCfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPCfg.ShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Errorf("failed to flush traces - %v", err)
		}
	}()

	trx, custRepo, closeStore, err := customerRepository(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	custCache, closeCache, err := customerCache(cfg.RedisCfg)
	if err != nil {
		return err
	}
	defer closeCache()

	validator, err := validation.English()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := diagnostics.NewHTTPMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register http metrics - %w", err)
	}

	app, err := infra.Router(infra.RouterDeps{
		Logger:    logger,
		Store:     service.NewCustomerService(trx, validator, custRepo, custCache),
		Validator: validator,
		Tracer:    tracer,
		Metrics:   metrics,
		AuthCfg:   cfg.AuthCfg,
	})
	if err != nil {
		return err
	}

	diagSrv := diagnostics.NewServer(cfg.DiagnosticsCfg.Port, registry, diagnosticsVerifier(cfg.DiagnosticsCfg))

	return start(app, diagSrv, cfg.HTTPCfg, logger)
}

func customerRepository(cfg config.Config) (transactor.Transactor, repository.CustomerRepository, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreCfg.ConnectTimeout)
	defer cancel()

	switch cfg.StoreCfg.Backend {
	case config.StoreBackendMongo:
		client, err := infra.Mongodb(ctx, cfg.MongoCfg)
		if err != nil {
			return nil, nil, nil, err
		}

		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logrus.Errorf("failed to disconnect from mongo - %v", err)
			}
		}
		return transactor.NewNopTransactor(), repository.NewMongoCustomerRepository(client), closeFn, nil
	default:
		if err := infra.Migrate(migrations.FS, cfg.PostgresCfg); err != nil {
			return nil, nil, nil, err
		}

		pool, err := infra.Postgresql(ctx, cfg.PostgresCfg)
		if err != nil {
			return nil, nil, nil, err
		}

		trxExecutor := transactor.NewPgxWithinTransactionExecutor(pool)
		return transactor.NewPgxTransactor(pool), repository.NewPostgresCustomerRepository(trxExecutor), pool.Close, nil
	}
}

func customerCache(cfg config.RedisCfg) (cache.CustomerCacheRepository, func(), error) {
	if cfg.Addr == "" {
		logrus.Info("redis address is not configured, customers won't be cached")
		return cache.NewNopCustomerCache(), func() {}, nil
	}

	client, err := infra.Redis(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.Errorf("failed to close redis client - %v", err)
		}
	}
	return cache.NewRedisCustomerCache(client), closeFn, nil
}

func diagnosticsVerifier(cfg config.DiagnosticsCfg) diagnostics.CredentialsVerifier {
	if !cfg.Protected() {
		return nil
	}

	return func(user, password string) bool {
		if subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) != 1 {
			return false
		}
		return auth.VerifyPassword(cfg.PasswordHash, password) == nil
	}
}

func start(app *echo.Echo, diagSrv *diagnostics.Server, cfg config.HTTPCfg, logger *logrus.Logger) error {
	shutdownCh := make(chan os.Signal, 1)
	errorCh := make(chan error, 2)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		errorCh <- app.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	go func() {
		errorCh <- diagSrv.Start()
	}()

	logger.Infof("server is listening on port %d", cfg.Port)

	var runErr error
	select {
	case <-shutdownCh:
		logger.Info("shutdown signal has been sent, stopping the server...")
	case err := <-errorCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("shutting down the server, unexpected error occurred - %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Errorf("failed to stop server gracefully - %v", err)
	}
	if err := diagSrv.Shutdown(ctx); err != nil {
		logger.Errorf("failed to stop diagnostics server gracefully - %v", err)
	}
	return runErr
}
