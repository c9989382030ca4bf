package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render a snapshot file on every save",
	Long: `Watches a desk snapshot file and re-renders the crosspoint board
whenever the file changes. Useful while hand-editing show files.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}
		if file == "" {
			fmt.Println("Error: no snapshot file: pass a file or --file")
			os.Exit(1)
		}
		plain, _ := cmd.Flags().GetBool("plain")
		debug, _ := cmd.Flags().GetBool("debug")
		logger := cli.NewLogger(debug)

		tui.PrintBanner()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		render := func() {
			snap, err := cli.LoadSnapshot(file)
			if err != nil {
				cli.SystemMessage("Reload failed: %v.", err)
				return
			}
			routes, err := cli.RoutesFor(snap)
			if err != nil {
				cli.SystemMessage("Reload failed: %v.", err)
				return
			}
			fmt.Print(cli.RenderMarkdown(tui.Board(snap, routes), plain))
			cli.SystemMessage("Waiting for changes... (Ctrl+C to quit)")
		}

		render()
		if err := cli.WatchFile(sigCtx, file, logger, render); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if sig := sigCtx.Signal(); sig != nil {
			cli.SystemMessage("Stopped by %v.", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("file", "f", "", "Snapshot file to watch")
	watchCmd.Flags().Bool("plain", false, "Print raw markdown without terminal styling")
}
