package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/parquet"
	"github.com/huangsam/metricsagg/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSummary outputs the summary table, dispatching based on the output format configured.
func PrintSummary(table schema.SummaryTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONSummary(table, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.TextOut:
		if err := printSummaryTable(table, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetSummary(table, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := printCSVSummary(table, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	}
	contract.Logger.Debug("Summary complete", "folders", len(table.Rows), "columns", len(table.Columns), "duration", duration)
	return nil
}

// printCSVSummary handles opening the file and calling the CSV writer.
func printCSVSummary(table schema.SummaryTable, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVSummary(w, table, fmtFloat)
	}, "Wrote CSV")
}

// printJSONSummary handles opening the file and calling the JSON writer.
func printJSONSummary(table schema.SummaryTable, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONSummary(w, table, fmtFloat)
	}, "Wrote JSON")
}

// printParquetSummary writes the table in long format, one row per populated cell.
func printParquetSummary(table schema.SummaryTable, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return parquet.WriteSummaryCells(w, parquet.ConvertSummaryTable(table))
	}, "Wrote Parquet")
}

// printSummaryTable prints the populated cells in long format using the tablewriter API.
func printSummaryTable(table schema.SummaryTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		tbl := tablewriter.NewWriter(w)
		tbl.Header([]string{"Folder", "Source", "Category", "Metric", "Value"})
		tbl.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.Global = tw.AlignRight
		})

		folderWidth := GetMaxTableFolderWidth(cfg)
		var data [][]string
		for _, cell := range table.Cells() {
			data = append(data, []string{
				contract.TruncatePath(cell.Folder, folderWidth),
				string(cell.Source),
				string(cell.Category),
				cell.Metric,
				fmtFloat(cell.Value),
			})
		}

		if err := tbl.Bulk(data); err != nil {
			return err
		}
		if err := tbl.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Summarized %d folders into %d columns in %v\n",
			len(table.Rows), len(table.Columns), duration.Round(time.Millisecond))
		return err
	}, "Wrote table")
}
