package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/pkg/command"
	"github.com/spf13/cobra"
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec [envelope]",
	Short: "Execute a command envelope against a desk",
	Long: `Runs a JSON command envelope (e.g. '{"command":"setCrosspoint","input":0,"output":1,"level":-3}')
against a snapshot file or a desk on a running server, and prints the
response envelope. Reads the envelope from stdin when no argument is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		envelope, err := readEnvelope(args)
		if err != nil {
			fmt.Printf("Error reading envelope: %v\n", err)
			os.Exit(1)
		}

		server, _ := cmd.Flags().GetString("server")
		if server != "" {
			deskID, _ := cmd.Flags().GetString("desk")
			if deskID == "" {
				fmt.Println("Error: --server requires --desk")
				os.Exit(1)
			}
			res, err := cli.NewClient(server).Command(cmd.Context(), deskID, envelope)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(res))
			return
		}

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Println("Error: no desk: pass --file or --server")
			os.Exit(1)
		}

		snap, err := cli.LoadSnapshot(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		desk, err := patchbay.New(snap.NumInputs, snap.NumOutputs)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		desk.SetState(snap)

		res := command.NewProcessor().Process(cmd.Context(), desk, envelope)
		fmt.Println(string(res))

		if write, _ := cmd.Flags().GetBool("write"); write {
			if err := cli.SaveSnapshot(file, desk.State()); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

// readEnvelope takes the envelope from the first argument, or stdin when
// the argument is missing or "-".
func readEnvelope(args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	return io.ReadAll(os.Stdin)
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringP("file", "f", "", "Snapshot file to run the command against")
	execCmd.Flags().String("server", "", "Base URL of a running patchbay server")
	execCmd.Flags().String("desk", "", "Desk id to target when --server is set")
	execCmd.Flags().BoolP("write", "w", false, "Write the resulting state back to the snapshot file")
}
