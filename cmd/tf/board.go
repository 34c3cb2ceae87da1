package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskflow/internal/position"
	"github.com/zulandar/taskflow/internal/task"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Board management commands",
	}
	cmd.AddCommand(newBoardCreateCmd())
	cmd.AddCommand(newBoardListCmd())
	cmd.AddCommand(newBoardShowCmd())
	return cmd
}

func newBoardCreateCmd() *cobra.Command {
	var (
		flags       commonFlags
		workspace   uint
		description string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Long:  "Creates a board with the default To Do, In Progress and Done columns.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			b, err := svc.CreateBoard(workspace, flags.userID, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created board %d with %d columns\n", b.ID, len(b.Columns))
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVarP(&workspace, "workspace", "w", 0, "workspace id (required)")
	cmd.Flags().StringVar(&description, "description", "", "board description")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func newBoardListCmd() *cobra.Command {
	var (
		flags     commonFlags
		workspace uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the boards of a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			boards, err := svc.ListBoards(workspace)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(boards) == 0 {
				fmt.Fprintln(out, "No boards found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLUMNS")
			for _, b := range boards {
				fmt.Fprintf(w, "%d\t%s\t%d\n", b.ID, b.Name, len(b.Columns))
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVarP(&workspace, "workspace", "w", 0, "workspace id (required)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func newBoardShowCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board with its columns and tasks in order",
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
			b, err := svc.GetBoard(id)
			if err != nil {
				return err
			}
			printBoard(cmd, b)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func printBoard(cmd *cobra.Command, b *task.BoardView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Board %d: %s\n", b.ID, b.Name)
	for _, col := range b.Columns {
		limit := ""
		if col.WIPLimit != nil {
			limit = fmt.Sprintf(" (WIP %d)", *col.WIPLimit)
		}
		fmt.Fprintf(out, "\n[%d] %s%s\n", col.ID, col.Name, limit)
		if len(col.Tasks) == 0 {
			fmt.Fprintln(out, "  (empty)")
			continue
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, t := range col.Tasks {
			fmt.Fprintf(w, "  %d\t#%d\t%s\t%s\n", t.Position, t.ID, t.Status, t.Title)
		}
		w.Flush()
	}
}

func newColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Board column commands",
	}
	cmd.AddCommand(newColumnAddCmd())
	cmd.AddCommand(newColumnReorderCmd())
	cmd.AddCommand(newColumnDeleteCmd())
	return cmd
}

func newColumnAddCmd() *cobra.Command {
	var (
		flags    commonFlags
		board    uint
		color    string
		wipLimit int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append a column to a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			in := task.ColumnInput{Name: args[0], Color: color}
			if cmd.Flags().Changed("wip-limit") {
				in.WIPLimit = &wipLimit
			}
			col, err := svc.AddColumn(board, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added column %d at position %d\n", col.ID, col.Position)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVarP(&board, "board", "b", 0, "board id (required)")
	cmd.Flags().StringVar(&color, "color", "", "column color, e.g. #e2e8f0")
	cmd.Flags().IntVar(&wipLimit, "wip-limit", 0, "work-in-progress limit")
	cmd.MarkFlagRequired("board")
	return cmd
}

func newColumnReorderCmd() *cobra.Command {
	var (
		flags commonFlags
		board uint
	)

	cmd := &cobra.Command{
		Use:   "reorder <id=position>...",
		Short: "Set column positions",
		Long:  "Writes each column's position as given. Ids that are not on the board are skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseItems(args)
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			results, err := svc.ReorderColumns(board, items)
			if err != nil {
				return err
			}
			printReorder(cmd, results)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().UintVarP(&board, "board", "b", 0, "board id (required)")
	cmd.MarkFlagRequired("board")
	return cmd
}

func newColumnDeleteCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column",
		Long:  "Deletes the column. Its tasks stay in the workspace without a column.",
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
			if err := svc.DeleteColumn(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted column %d\n", id)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// parseItems reads "id=position" pairs.
func parseItems(args []string) ([]position.Item, error) {
	items := make([]position.Item, 0, len(args))
	for _, arg := range args {
		idStr, posStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid item %q (want id=position)", arg)
		}
		id, err := parseID(idStr)
		if err != nil {
			return nil, err
		}
		pos, err := strconv.Atoi(posStr)
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("invalid position in %q", arg)
		}
		items = append(items, position.Item{ID: id, Position: pos})
	}
	return items, nil
}

func printReorder(cmd *cobra.Command, results []position.ItemResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOSITION\tRESULT")
	for _, r := range results {
		status := "applied"
		switch {
		case r.Err != nil:
			status = "failed: " + r.Err.Error()
		case !r.Applied:
			status = "skipped"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\n", r.ID, r.Position, status)
	}
	w.Flush()
}
