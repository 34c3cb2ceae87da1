package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tf",
		Short: "Taskflow: boards, tasks and dependencies",
		Long:  "Taskflow keeps ordered boards, task hierarchies and dependency graphs consistent and streams every change to subscribers.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWorkspaceCmd())
	cmd.AddCommand(newBoardCmd())
	cmd.AddCommand(newColumnCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newDepCmd())
	cmd.AddCommand(newSubtaskCmd())
	cmd.AddCommand(newLabelCmd())
	cmd.AddCommand(newAuditCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tf %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
