package commands

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/application/services/scheduling"
	"github.com/vsinha/prodplan/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "prodplan",
	Short: "Production planning and procurement engine",
	Long: `prodplan schedules active customer orders day by day against machine,
labor and raw material capacity, and derives the material procurement
schedule needed to keep safety stock.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml or app.env")
}

// loadConfig reads the configuration and applies its log level
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, keeping current")
	} else if level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	return cfg, nil
}

// assemblerConfig converts the planning section into orchestration settings
func assemblerConfig(p config.PlanningConfig) (orchestration.Config, error) {
	threshold, err := p.Threshold()
	if err != nil {
		return orchestration.Config{}, err
	}
	loc, err := p.Location()
	if err != nil {
		return orchestration.Config{}, err
	}

	return orchestration.Config{
		Scheduling: scheduling.Config{
			WorkerCount:         p.WorkerCount,
			WorkerMinutesPerDay: decimal.NewFromInt(int64(p.WorkerMinutesPerDay)),
			MaxIdleDays:         p.MaxIdleDays,
			MaxHorizonDays:      p.MaxHorizonDays,
		},
		DowntimeRiskThreshold: threshold,
		Location:              loc,
	}, nil
}
