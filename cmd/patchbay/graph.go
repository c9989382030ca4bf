package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the signal flow visualization",
	Long:  `Inspects a desk snapshot and outputs a Mermaid diagram (graph LR) of the audible signal flow from inputs through crosspoints to outputs.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}

		server, _ := cmd.Flags().GetString("server")
		if server != "" {
			deskID, _ := cmd.Flags().GetString("desk")
			if deskID == "" {
				fmt.Println("Error: --server requires --desk")
				os.Exit(1)
			}
			diagram, err := cli.NewClient(server).Graph(cmd.Context(), deskID)
			if err != nil {
				fmt.Printf("Error fetching graph: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(diagram)
			return
		}

		snap, err := fetchSnapshot(cmd, file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		routes, err := cli.RoutesFor(snap)
		if err != nil {
			fmt.Printf("Error resolving routes: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		fmt.Print(graph.GenerateMermaid(snap, routes))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("file", "f", "", "Snapshot file to inspect (.json, .yaml or .msgpack)")
	graphCmd.Flags().String("server", "", "Base URL of a running patchbay server")
	graphCmd.Flags().String("desk", "", "Desk id to fetch when --server is set")
}
