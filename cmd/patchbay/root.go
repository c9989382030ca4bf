package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patchbay",
	Short: "Patchbay is a routing matrix control core for live-show audio",
	Long: `Patchbay manages N-input by M-output routing desks: levels, mutes,
solos, ganged controls and snapshots, with HTTP and MCP control surfaces.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
