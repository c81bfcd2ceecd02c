package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/services"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodplan/pkg/interfaces/cli/output"
)

// PlanConfig holds configuration for the plan command
type PlanConfig struct {
	ScenarioDir string
	Date        string
	Format      string
	OutputDir   string
	Verbose     bool
}

// PlanCommand runs one planning pass over a CSV scenario
type PlanCommand struct {
	config    PlanConfig
	assembler orchestration.Config
	out       io.Writer
}

// NewPlanCommand creates a plan command writing to out
func NewPlanCommand(config PlanConfig, assembler orchestration.Config, out io.Writer) *PlanCommand {
	return &PlanCommand{
		config:    config,
		assembler: assembler,
		out:       out,
	}
}

// Execute loads the scenario, plans it and renders the result
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("scenario directory is required")
	}

	loc := c.assembler.Location
	if loc == nil {
		loc = time.UTC
	}
	runDate := time.Now().In(loc)
	if c.config.Date != "" {
		parsed, err := time.ParseInLocation(entities.DateLayout, c.config.Date, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", c.config.Date)
		}
		runDate = parsed
	}

	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}
	if c.config.Verbose {
		fmt.Fprintf(c.out, "Loaded scenario %s: %d orders, %d products, %d machines, %d materials\n\n",
			c.config.ScenarioDir, len(scenario.Orders), len(scenario.Products), len(scenario.Machines), len(scenario.Materials))
	}

	validation := services.NewBOMValidator().ValidateProducts(scenario.Products, scenario.Machines, scenario.Materials)
	for _, problem := range validation.Errors {
		log.Warn().Str("scenario", c.config.ScenarioDir).Msg(problem)
	}

	repos, err := scenario.Repositories()
	if err != nil {
		return fmt.Errorf("failed to load scenario into repositories: %w", err)
	}

	start := time.Now()
	result, err := orchestration.NewPlanAssembler(repos, c.assembler, nil).Assemble(ctx, runDate)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	return output.Generate(c.out, result, output.Config{
		Format:      c.config.Format,
		OutputDir:   c.config.OutputDir,
		Verbose:     c.config.Verbose,
		PlanningDur: time.Since(start),
	})
}

var planConfig PlanConfig

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a CSV scenario and print the result",
	Long: `Plan loads orders, products, machines, materials and optional invoices
from a scenario directory of CSV files, runs one planning pass and prints the
production plan with its material procurement schedule.`,
	Example: "  prodplan plan --scenario ./example/scenario --date 2025-03-03 --format json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assembler, err := assemblerConfig(cfg.Planning)
		if err != nil {
			return err
		}
		return NewPlanCommand(planConfig, assembler, os.Stdout).Execute(cmd.Context())
	},
}

func init() {
	planCmd.Flags().StringVarP(&planConfig.ScenarioDir, "scenario", "s", "", "directory containing the scenario CSV files")
	planCmd.Flags().StringVarP(&planConfig.Date, "date", "d", "", "run date as YYYY-MM-DD (default today)")
	planCmd.Flags().StringVarP(&planConfig.Format, "format", "f", "text", "output format: text, json or csv")
	planCmd.Flags().StringVarP(&planConfig.OutputDir, "output", "o", "", "output directory for csv format")
	planCmd.Flags().BoolVarP(&planConfig.Verbose, "verbose", "v", false, "print daily plans and load summary")
	_ = planCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(planCmd)
}
