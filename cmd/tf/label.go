package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskflow/internal/models"
)

func newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label management commands",
	}
	cmd.AddCommand(newLabelCreateCmd())
	cmd.AddCommand(newLabelListCmd())
	cmd.AddCommand(newLabelAttachCmd())
	cmd.AddCommand(newLabelDetachCmd())
	return cmd
}

func newLabelCreateCmd() *cobra.Command {
	var (
		flags     commonFlags
		workspace uint
		color     string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label in a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			l, err := svc.CreateLabel(workspace, flags.userID, args[0], color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created label %d (%s %s)\n", l.ID, l.Name, l.Color)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVar(&workspace, "workspace", 0, "workspace id (required)")
	cmd.Flags().StringVar(&color, "color", models.DefaultLabelColor, "label color")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func newLabelListCmd() *cobra.Command {
	var (
		flags     commonFlags
		workspace uint
		taskID    uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a workspace's labels, or a task's with --task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (workspace == 0) == (taskID == 0) {
				return fmt.Errorf("exactly one of --workspace or --task is required")
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			var labels []models.Label
			if taskID != 0 {
				labels, err = svc.TaskLabels(taskID)
			} else {
				labels, err = svc.ListLabels(workspace)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(labels) == 0 {
				fmt.Fprintln(out, "No labels")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR")
			for _, l := range labels {
				fmt.Fprintf(w, "%d\t%s\t%s\n", l.ID, l.Name, l.Color)
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVar(&workspace, "workspace", 0, "workspace id")
	cmd.Flags().UintVar(&taskID, "task", 0, "task id")
	return cmd
}

func newLabelAttachCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "attach <task-id> <label-id>",
		Short: "Attach a label to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, labelID, err := parseIDPair(args)
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			if err := svc.AddLabelToTask(taskID, labelID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Labelled task %d with %d\n", taskID, labelID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLabelDetachCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "detach <task-id> <label-id>",
		Short: "Remove a label from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, labelID, err := parseIDPair(args)
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			if err := svc.RemoveLabelFromTask(taskID, labelID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed label %d from task %d\n", labelID, taskID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func parseIDPair(args []string) (uint, uint, error) {
	a, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
