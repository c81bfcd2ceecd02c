package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format      string
	OutputDir   string
	Verbose     bool
	PlanningDur time.Duration
}

// Generate writes the plan in the configured format. Text and JSON go to w;
// CSV is written as files under OutputDir.
func Generate(w io.Writer, result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(w, result, config)
	case "json":
		return generateJSONOutput(w, result)
	case "csv":
		return generateCSVOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	fmt.Fprintf(w, "Production Plan %s (run %s)\n", result.RunDate.Format(entities.DateLayout), result.RunID)
	fmt.Fprintf(w, "==========================================\n\n")

	fmt.Fprintf(w, "Orders: %d\n", len(result.Items))
	counts := result.CountByStatus()
	for _, status := range []entities.PlanStatus{
		entities.OnTrack, entities.AtRisk, entities.MaterialShortage, entities.Delayed,
		entities.Unschedulable, entities.MachineMissing, entities.CircularBOM,
	} {
		if n := counts[status]; n > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", status.String()+":", n)
		}
	}
	fmt.Fprintf(w, "Procurement items: %d\n", len(result.Procurement))
	if config.PlanningDur > 0 {
		fmt.Fprintf(w, "Planning time: %v\n", config.PlanningDur)
	}
	fmt.Fprintln(w)

	if len(result.Items) > 0 {
		fmt.Fprintf(w, "Orders:\n")
		fmt.Fprintf(w, "%-12s %-20s %-12s %-9s %-7s %-18s %-12s\n",
			"Order", "Product", "Delivery", "Remaining", "Target", "Status", "Finished")
		fmt.Fprintf(w, "%-12s %-20s %-12s %-9s %-7s %-18s %-12s\n",
			"------------", "--------------------", "------------", "---------", "-------", "------------------", "------------")

		for _, item := range result.Items {
			finished := "-"
			if n := len(item.DailyPlan); n > 0 {
				finished = item.DailyPlan[n-1].Date.Format(entities.DateLayout)
			}
			fmt.Fprintf(w, "%-12s %-20s %-12s %-9d %-7d %-18s %-12s\n",
				item.Order.ID,
				item.ProductName,
				item.Order.DeliveryDate.Format(entities.DateLayout),
				item.RemainingQuantity,
				item.DailyTarget,
				item.Status.String(),
				finished)

			for _, issue := range item.Issues {
				fmt.Fprintf(w, "    ! %s: %s\n", issue.Code, issue.Message)
			}
			if config.Verbose {
				for _, e := range item.DailyPlan {
					fmt.Fprintf(w, "    %s %6d  %s\n", e.Date.Format(entities.DateLayout), e.UnitsPlanned, e.Status)
				}
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Procurement) > 0 {
		fmt.Fprintf(w, "Material Procurement Schedule:\n")
		fmt.Fprintf(w, "%-12s %-24s %-12s %-12s %-12s\n",
			"Code", "Material", "Required By", "Quantity", "For Order")
		fmt.Fprintf(w, "%-12s %-24s %-12s %-12s %-12s\n",
			"------------", "------------------------", "------------", "------------", "------------")

		for _, p := range result.Procurement {
			fmt.Fprintf(w, "%-12s %-24s %-12s %-12s %-12s\n",
				p.Code,
				p.Name,
				p.RequiredByDate.Format(entities.DateLayout),
				p.QuantityNeeded.String(),
				p.SourceOrderID)
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	return nil
}

// generateJSONOutput writes the same document the HTTP API serves
func generateJSONOutput(w io.Writer, result *dto.PlanResult) error {
	jsonData, err := json.MarshalIndent(dto.NewProductionPlanResponse(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// generateCSVOutput writes daily_plan.csv and procurement_schedule.csv
func generateCSVOutput(w io.Writer, result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	planFile := filepath.Join(config.OutputDir, "daily_plan.csv")
	if err := writeDailyPlanCSV(result.Items, planFile); err != nil {
		return fmt.Errorf("failed to write daily plan CSV: %w", err)
	}

	procurementFile := filepath.Join(config.OutputDir, "procurement_schedule.csv")
	if err := writeProcurementCSV(result.Procurement, procurementFile); err != nil {
		return fmt.Errorf("failed to write procurement CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "CSV results saved to:\n")
		fmt.Fprintf(w, "  Daily Plan: %s\n", planFile)
		fmt.Fprintf(w, "  Procurement: %s\n", procurementFile)
	}

	return nil
}

func writeDailyPlanCSV(items []dto.PlanItem, filename string) error {
	rows := [][]string{{"order_id", "product_name", "order_status", "date", "units", "day_status"}}
	for _, item := range items {
		for _, e := range item.DailyPlan {
			rows = append(rows, []string{
				string(item.Order.ID),
				item.ProductName,
				item.Status.String(),
				e.Date.Format(entities.DateLayout),
				strconv.FormatInt(int64(e.UnitsPlanned), 10),
				e.Status.String(),
			})
		}
	}
	return writeCSV(filename, rows)
}

func writeProcurementCSV(items []entities.ProcurementItem, filename string) error {
	rows := [][]string{{"raw_material_id", "code", "name", "required_by", "quantity_needed", "for_order"}}
	for _, p := range items {
		rows = append(rows, []string{
			string(p.RawMaterialID),
			p.Code,
			p.Name,
			p.RequiredByDate.Format(entities.DateLayout),
			p.QuantityNeeded.String(),
			string(p.SourceOrderID),
		})
	}
	return writeCSV(filename, rows)
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
