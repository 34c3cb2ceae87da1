package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Task checklist commands",
	}
	cmd.AddCommand(newSubtaskAddCmd())
	cmd.AddCommand(newSubtaskToggleCmd())
	cmd.AddCommand(newSubtaskReorderCmd())
	return cmd
}

func newSubtaskAddCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Append a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			s, err := svc.AddSubtask(taskID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %d at position %d\n", s.ID, s.Position)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newSubtaskToggleCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "toggle <subtask-id>",
		Short: "Flip a subtask's completed flag",
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
			s, err := svc.ToggleSubtask(id)
			if err != nil {
				return err
			}
			state := "open"
			if s.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtask %d is %s\n", s.ID, state)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newSubtaskReorderCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "reorder <task-id> <id=position>...",
		Short: "Set subtask positions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			items, err := parseItems(args[1:])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			results, err := svc.ReorderSubtasks(taskID, items)
			if err != nil {
				return err
			}
			printReorder(cmd, results)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
