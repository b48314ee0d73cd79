package outwriter

import (
	"os"

	"github.com/huangsam/metricsagg/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableFolderWidth calculates the maximum width for folder names in table output
// based on terminal width and the fixed columns of the long-format table.
func GetMaxTableFolderWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Source + Category + Metric + Value with borders/padding
	baseWidth := 20 + 10 + 30 + 14
	baseWidth += 16

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}
