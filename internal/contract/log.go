package contract

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the shared stderr logger. Stdout is reserved for report output
// and the MCP stdio transport.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "metricsagg",
	Level:  log.InfoLevel,
})

// ConfigureLogger adjusts the shared logger for the current invocation.
func ConfigureLogger(verbose bool) {
	if verbose {
		Logger.SetLevel(log.DebugLevel)
		return
	}
	Logger.SetLevel(log.InfoLevel)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.Error(msg, "err", err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.Warn(msg, "err", err)
}
