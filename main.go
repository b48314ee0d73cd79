// main is the entry point for the metricsagg CLI.
package main

import (
	"os"

	"github.com/huangsam/metricsagg/cmd"
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/iocache"
)

func main() {
	cmd.SetHistoryManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.Logger.Error("Command failed", "err", err)
		os.Exit(1)
	}
}
