package cmd

import (
	"github.com/huangsam/metricsagg/core"
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/spf13/cobra"
)

// summarizeCmd aggregates every project folder under the root directory.
var summarizeCmd = &cobra.Command{
	Use:   "summarize [root-path]",
	Short: "Write one summary row per project folder.",
	Long: `Aggregate the analyzer reports of every project folder under the root directory.

Each immediate subdirectory of the root is a project folder. Any of these files
found in a folder are read:
- complexity.json (radon cc)
- lizard_report.xml (lizard --xml)
- halstead.json (radon hal)
- raw_metrics.json (radon raw)

Metrics are averaged separately for test and non-test code and flattened into
"{file}_{category}_{metric}" columns. Missing files leave blank cells.

Examples:
  # Summarize the folders under ./projects into metrics_summary.csv
  metricsagg summarize ./projects

  # Print a table instead
  metricsagg summarize ./projects --output text

  # Skip broken reports and keep three decimals
  metricsagg summarize ./projects --keep-going --precision 3

  # Record every run in the default SQLite history
  metricsagg summarize ./projects --history-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummarize(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot summarize metrics", err)
		}
	},
}
