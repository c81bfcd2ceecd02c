package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vsinha/prodplan/pkg/domain/services"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/postgres"
)

var seedDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the planning tables",
	Long: `Migrate auto-migrates the tables the planner reads. With --seed it also
loads a CSV scenario directory into them.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&seedDir, "seed", "", "scenario directory to load after migrating")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, _, err := postgres.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer postgres.Close(db)

	if err := postgres.SetupModels(db); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	log.Info().Msg("Database migrated")

	if seedDir == "" {
		return nil
	}
	return seedScenario(cmd.Context(), db, seedDir)
}

// seedScenario writes every record of a CSV scenario through the write database
func seedScenario(ctx context.Context, db *gorm.DB, dir string) error {
	scenario, err := csv.NewLoader().LoadScenario(dir)
	if err != nil {
		return errors.Wrap(err, "failed to load seed scenario")
	}

	validation := services.NewBOMValidator().ValidateProducts(scenario.Products, scenario.Machines, scenario.Materials)
	for _, problem := range validation.Errors {
		log.Warn().Str("scenario", dir).Msg(problem)
	}

	orders := postgres.NewOrderRepository(db, db)
	for _, o := range scenario.Orders {
		if err := orders.Save(ctx, o); err != nil {
			return err
		}
	}
	products := postgres.NewProductRepository(db, db)
	for _, p := range scenario.Products {
		if err := products.Save(ctx, p); err != nil {
			return err
		}
	}
	machines := postgres.NewMachineRepository(db, db)
	for _, m := range scenario.Machines {
		if err := machines.Save(ctx, m); err != nil {
			return err
		}
	}
	materials := postgres.NewMaterialRepository(db, db)
	for _, m := range scenario.Materials {
		if err := materials.Save(ctx, m); err != nil {
			return err
		}
	}
	invoices := postgres.NewInvoiceRepository(db, db)
	for id, health := range scenario.Invoices {
		if err := invoices.Save(ctx, id, health); err != nil {
			return err
		}
	}

	log.Info().
		Str("scenario", dir).
		Int("orders", len(scenario.Orders)).
		Int("products", len(scenario.Products)).
		Int("machines", len(scenario.Machines)).
		Int("materials", len(scenario.Materials)).
		Int("invoices", len(scenario.Invoices)).
		Msg("Seed scenario loaded")
	return nil
}
