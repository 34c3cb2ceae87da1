package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskflow/internal/dependency"
	"github.com/zulandar/taskflow/internal/models"
)

func newDepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(newDepAddCmd())
	cmd.AddCommand(newDepListCmd())
	cmd.AddCommand(newDepRemoveCmd())
	cmd.AddCommand(newDepReadyCmd())
	return cmd
}

func newDepAddCmd() *cobra.Command {
	var (
		flags     commonFlags
		blockedBy uint
		depType   string
	)

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a dependency",
		Long:  "Makes the task wait on --blocked-by. Rejected if it would close a cycle.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			edge, err := svc.AddDependency(id, flags.userID, dependency.AddOpts{
				PredecessorID: blockedBy,
				Type:          depType,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added dependency: %d blocked by %d (%s)\n",
				edge.SuccessorTaskID, edge.PredecessorTaskID, edge.DependencyType)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().UintVar(&blockedBy, "blocked-by", 0, "task id that blocks this task (required)")
	cmd.Flags().StringVar(&depType, "type", models.DepFinishToStart, "dependency type")
	cmd.MarkFlagRequired("blocked-by")
	return cmd
}

func newDepListCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List task dependencies",
		Long:  "Shows what blocks this task and what this task blocks.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			blockers, err := svc.Graph().PredecessorsOf(id)
			if err != nil {
				return err
			}
			dependents, err := svc.Graph().SuccessorsOf(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(blockers) == 0 && len(dependents) == 0 {
				fmt.Fprintf(out, "No dependencies for %d\n", id)
				return nil
			}
			if len(blockers) > 0 {
				fmt.Fprintln(out, "Blocked by:")
				printTaskRows(cmd, blockers)
			}
			if len(dependents) > 0 {
				fmt.Fprintln(out, "Blocks:")
				printTaskRows(cmd, dependents)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func printTaskRows(cmd *cobra.Command, tasks []models.Task) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tSTATUS\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", t.ID, t.Status, t.Title)
	}
	w.Flush()
}

func newDepRemoveCmd() *cobra.Command {
	var (
		flags     commonFlags
		blockedBy uint
	)

	cmd := &cobra.Command{
		Use:   "remove <task-id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			if err := svc.RemoveDependency(blockedBy, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency: %d blocked by %d\n", id, blockedBy)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVar(&blockedBy, "blocked-by", 0, "blocking task id to remove (required)")
	cmd.MarkFlagRequired("blocked-by")
	return cmd
}

func newDepReadyCmd() *cobra.Command {
	var (
		flags     commonFlags
		workspace uint
	)

	cmd := &cobra.Command{
		Use:   "ready",
		Short: "List open tasks with no unfinished blockers",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			tasks, err := svc.Graph().ReadyTasks(workspace)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ready tasks.")
				return nil
			}
			printTaskRows(cmd, tasks)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVarP(&workspace, "workspace", "w", 0, "workspace id (required)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}
