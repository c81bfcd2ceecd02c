package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
	"github.com/vsinha/prodplan/pkg/infrastructure/cache"
	"github.com/vsinha/prodplan/pkg/infrastructure/metrics"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/prodplan/pkg/interfaces/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the production plan API server",
	Long:  `Start the HTTP API serving GET /api/v1/production-plan from the ERP database`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	assemblerCfg, err := assemblerConfig(cfg.Planning)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, readOnlyDB, err := postgres.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if readOnlyDB != db {
			_ = postgres.Close(readOnlyDB)
		}
		_ = postgres.Close(db)
	}()

	collector := metrics.NewMetrics()

	var products repositories.ProductRepository = postgres.NewProductRepository(db, readOnlyDB)
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	} else if redisCache.Enabled() {
		defer redisCache.Close()
		products = cache.NewProductRepository(products, redisCache, cfg.Redis.ProductTTL, collector)
	}

	assembler := orchestration.NewPlanAssembler(orchestration.Repositories{
		Orders:    postgres.NewOrderRepository(db, readOnlyDB),
		Products:  products,
		Machines:  postgres.NewMachineRepository(db, readOnlyDB),
		Materials: postgres.NewMaterialRepository(db, readOnlyDB),
		Invoices:  postgres.NewInvoiceRepository(db, readOnlyDB),
	}, assemblerCfg, collector)

	var metricsHandler = collector.Handler()
	if !cfg.Server.MetricsEnabled {
		metricsHandler = nil
	}
	server := api.NewServer(cfg.Server, assembler, metricsHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server stopped")
		}
		return nil
	}

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Shutting down API server")
	return nil
}
