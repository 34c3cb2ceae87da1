package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskflow/internal/task"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskMoveCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskChildrenCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		flags       commonFlags
		workspace   uint
		title       string
		description string
		status      string
		priority    string
		start, due  string
		assignee    uint
		parent      uint
		column      uint
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long:  "Creates a task, appending it to the end of its column when --column is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := task.CreateOpts{
				Title:       title,
				Description: description,
				Status:      status,
				Priority:    priority,
			}
			var err error
			if opts.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if opts.DueDate, err = parseDate(due); err != nil {
				return err
			}
			if cmd.Flags().Changed("assignee") {
				opts.AssigneeID = &assignee
			}
			if cmd.Flags().Changed("parent") {
				opts.ParentTaskID = &parent
			}
			if cmd.Flags().Changed("column") {
				opts.BoardColumnID = &column
			}

			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			v, err := svc.Create(workspace, flags.userID, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created task %d\n", v.ID)
			if v.BoardColumnID != nil {
				fmt.Fprintf(out, "Column: %d, position %d\n", *v.BoardColumnID, v.Position)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().UintVarP(&workspace, "workspace", "w", 0, "workspace id (required)")
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default TODO)")
	cmd.Flags().StringVar(&priority, "priority", "", "LOW, MEDIUM, HIGH or URGENT (default MEDIUM)")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().UintVar(&assignee, "assignee", 0, "assignee user id")
	cmd.Flags().UintVar(&parent, "parent", 0, "parent task id")
	cmd.Flags().UintVar(&column, "column", 0, "board column id")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		flags     commonFlags
		workspace uint
		filters   task.ListFilters
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "Lists one page of a workspace's tasks with optional filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			res, err := svc.List(workspace, filters)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Records) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tASSIGNEE\tTITLE")
			for _, t := range res.Records {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Status, t.Priority, formatDate(t.DueDate), formatUint(t.AssigneeID), t.Title)
			}
			w.Flush()
			fmt.Fprintf(out, "\nPage %d of %d (%d tasks)\n", res.Page, res.Pages, res.Total)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().UintVarP(&workspace, "workspace", "w", 0, "workspace id (required)")
	cmd.Flags().StringVar(&filters.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filters.Priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&filters.Keyword, "keyword", "", "match title or description")
	cmd.Flags().IntVar(&filters.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filters.Size, "size", 20, "page size (max 100)")
	cmd.Flags().StringVar(&filters.SortBy, "sort", "", "title, priority, status, dueDate, updatedAt or createdAt")
	cmd.Flags().StringVar(&filters.SortDir, "dir", "", "asc or desc")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its subtasks",
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
			v, err := svc.Get(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %d: %s\n", v.ID, v.Title)
			fmt.Fprintf(out, "Status:    %s\n", v.Status)
			fmt.Fprintf(out, "Priority:  %s\n", v.Priority)
			fmt.Fprintf(out, "Column:    %s\n", formatUint(v.BoardColumnID))
			fmt.Fprintf(out, "Parent:    %s\n", formatUint(v.ParentTaskID))
			fmt.Fprintf(out, "Assignee:  %s\n", formatUint(v.AssigneeID))
			fmt.Fprintf(out, "Start:     %s\n", formatDate(v.StartDate))
			fmt.Fprintf(out, "Due:       %s\n", formatDate(v.DueDate))
			fmt.Fprintf(out, "Progress:  %d%%\n", v.Progress)
			fmt.Fprintf(out, "Comments:  %d\n", v.CommentCount)
			if v.Description != "" {
				fmt.Fprintf(out, "\n%s\n", v.Description)
			}
			if len(v.Subtasks) > 0 {
				fmt.Fprintf(out, "\nSubtasks (%.0f%% complete):\n", v.CompletionRatio*100)
				for _, s := range v.Subtasks {
					mark := " "
					if s.Completed {
						mark = "x"
					}
					fmt.Fprintf(out, "  [%s] %d. %s (#%d)\n", mark, s.Position, s.Title, s.ID)
				}
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			v, err := svc.UpdateStatus(id, flags.userID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", v.ID, v.Status)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newTaskMoveCmd() *cobra.Command {
	var (
		flags  commonFlags
		column uint
		pos    int
	)

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to another column",
		Long:  "Moves the task to --column (0 takes it off the board). Without --position the task keeps its current position value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts := task.MoveOpts{ColumnID: &column}
			if cmd.Flags().Changed("position") {
				opts.Position = &pos
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			v, err := svc.Move(id, flags.userID, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %d to column %s at position %d\n",
				v.ID, formatUint(v.BoardColumnID), v.Position)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVar(&column, "column", 0, "destination column id (required)")
	cmd.Flags().IntVar(&pos, "position", 0, "destination position")
	cmd.MarkFlagRequired("column")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Soft-delete a task",
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
			if err := svc.Delete(id, flags.userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newTaskChildrenCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "children <task-id>",
		Short: "List child tasks with a status summary",
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
			children, err := svc.Hierarchy().ChildrenOf(id)
			if err != nil {
				return err
			}
			summary, err := svc.Hierarchy().ChildStatusSummary(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(children) == 0 {
				fmt.Fprintf(out, "Task %d has no children\n", id)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTITLE")
			for _, c := range children {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Status, c.Title)
			}
			w.Flush()
			fmt.Fprintln(out)
			for _, s := range summary {
				fmt.Fprintf(out, "%s: %d\n", s.Status, s.Count)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
