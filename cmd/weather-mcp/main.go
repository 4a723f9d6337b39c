// weather-mcp: National Weather Service MCP server
//
// Exposes US weather alerts and forecasts to any MCP host, and remembers
// favorite locations and recent searches between sessions.
//
// Usage:
//
//	weather-mcp serve                    # stdio transport
//	weather-mcp serve --transport http   # streamable HTTP on :8080
//	weather-mcp version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "weather-mcp",
	Short: "Weather MCP server backed by the National Weather Service",
	Long: `weather-mcp serves US weather alerts and forecasts over the
Model Context Protocol, and remembers favorite locations and search history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./weather-mcp.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
