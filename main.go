// Package main is the entry point for the coverspot CLI.
package main

import (
	"github.com/huangsam/coverspot/cmd"
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		// LogFatal exits, so release the stores first.
		iocache.CloseStores()
		contract.LogFatal("Cannot run command", err)
	}
}
