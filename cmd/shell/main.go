package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd starts the shell when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "shell",
	Short:         "Farm records shell with a remote launch decision",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decide the launch destination and serve it",
	RunE:  runShell,
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the persisted launch decision",
	RunE:  showState,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the persisted launch decision, as a reinstall would",
	RunE:  resetState,
}

func init() {
	rootCmd.AddCommand(runCmd, stateCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
