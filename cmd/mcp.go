package cmd

import (
	"fmt"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/iocache"
	"github.com/huangsam/coverspot/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpSetup validates the server defaults. Unlike sharedSetup it does not
// require an input file, since every tool call may name its own.
func mcpSetup(args []string) error {
	if err := startProfilingFromConfig(); err != nil {
		return err
	}
	if err := readInput(args); err != nil {
		return err
	}
	if err := contract.ProcessServerConfig(cfg, input); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [input-file]",
	Short: "Start the Coverspot MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents evaluate consultant
exports through standard tools.

Flags set the defaults of every tool call. The input file is optional here.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return mcpSetup(args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
