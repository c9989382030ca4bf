package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/console"
	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console [file]",
	Short: "Drive a desk interactively from the terminal",
	Long: `Starts an interactive session against a desk: one command envelope per
line, one response envelope back. Loads the desk from a snapshot file when
given, otherwise starts a fresh desk with the requested dimensions.
Type 'exit' or press Ctrl+D to leave.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		confirm, _ := cmd.Flags().GetBool("confirm")
		write, _ := cmd.Flags().GetBool("write")
		debug, _ := cmd.Flags().GetBool("debug")

		if write && file == "" {
			fmt.Println("Error: --write requires --file")
			os.Exit(1)
		}
		if confirm && jsonMode {
			// Confirmation prompts would corrupt the JSON stream.
			fmt.Println("Error: --confirm and --json cannot be used together.")
			os.Exit(1)
		}

		logger := cli.NewLogger(debug)

		desk, err := buildConsoleDesk(cmd, file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if !jsonMode {
			tui.PrintBanner()
		}

		opts := []console.Option{console.WithLogger(logger)}
		if jsonMode {
			opts = append(opts, console.WithHandler(console.NewJSONHandler(nil, nil)))
		}
		if confirm {
			handler := console.NewTextHandler(nil, nil)
			opts = append(opts,
				console.WithHandler(handler),
				console.WithInterceptor(console.ConfirmationMiddleware(handler)),
			)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		runErr := console.New(opts...).Run(sigCtx, desk)

		if write {
			if err := cli.SaveSnapshot(file, desk.State()); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if !jsonMode {
				cli.SystemMessage("Saved desk to %s.", file)
			}
		}

		if sig := sigCtx.Signal(); sig != nil && !jsonMode {
			cli.SystemMessage("Stopped by %v.", sig)
		}
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			fmt.Printf("Error: %v\n", runErr)
			os.Exit(1)
		}
	},
}

// buildConsoleDesk loads the snapshot when a file is given, otherwise
// starts a fresh desk with the flag dimensions.
func buildConsoleDesk(cmd *cobra.Command, file string) (*patchbay.Matrix, error) {
	if file != "" {
		snap, err := cli.LoadSnapshot(file)
		if err != nil {
			return nil, err
		}
		desk, err := patchbay.New(snap.NumInputs, snap.NumOutputs)
		if err != nil {
			return nil, err
		}
		desk.SetState(snap)
		return desk, nil
	}

	inputs, _ := cmd.Flags().GetInt("inputs")
	outputs, _ := cmd.Flags().GetInt("outputs")
	return patchbay.New(inputs, outputs)
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringP("file", "f", "", "Snapshot file to load the desk from")
	consoleCmd.Flags().Int("inputs", 8, "Input count for a fresh desk")
	consoleCmd.Flags().Int("outputs", 4, "Output count for a fresh desk")
	consoleCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	consoleCmd.Flags().Bool("confirm", false, "Ask before destructive commands (setState, clear, silent)")
	consoleCmd.Flags().BoolP("write", "w", false, "Write the desk state back to the snapshot file on exit")
}
