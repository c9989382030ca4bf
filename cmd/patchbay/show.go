package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render a desk snapshot as a crosspoint board",
	Long:  `Loads a desk snapshot from a file (or fetches one from a running server) and renders the crosspoint board with levels, mutes, solos and gangs.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}
		plain, _ := cmd.Flags().GetBool("plain")

		snap, err := fetchSnapshot(cmd, file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		routes, err := cli.RoutesFor(snap)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(cli.RenderMarkdown(tui.Board(snap, routes), plain))
	},
}

// fetchSnapshot resolves the snapshot source shared by show and graph: a
// desk on a running server when --server is set, a local file otherwise.
func fetchSnapshot(cmd *cobra.Command, file string) (*domain.Snapshot, error) {
	server, _ := cmd.Flags().GetString("server")
	if server != "" {
		deskID, _ := cmd.Flags().GetString("desk")
		if deskID == "" {
			return nil, fmt.Errorf("--server requires --desk")
		}
		return cli.NewClient(server).State(cmd.Context(), deskID)
	}
	if file == "" {
		return nil, fmt.Errorf("no snapshot source: pass a file or --server")
	}
	return cli.LoadSnapshot(file)
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("file", "f", "", "Snapshot file to render (.json, .yaml or .msgpack)")
	showCmd.Flags().String("server", "", "Base URL of a running patchbay server")
	showCmd.Flags().String("desk", "", "Desk id to fetch when --server is set")
	showCmd.Flags().Bool("plain", false, "Print raw markdown without terminal styling")
}
