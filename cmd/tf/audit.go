package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "audit <task-id>",
		Short: "Show a task's audit history, newest first",
		Long:  "Shows the most recent 50 audit entries of a task, including deleted tasks.",
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
			rows, err := svc.Audit().History(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No history for task %d\n", id)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tUSER\tACTION\tFIELD\tOLD\tNEW")
			for _, r := range rows {
				field := r.FieldName
				if field == "" {
					field = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.UTC().Format("2006-01-02 15:04:05"), r.UserID, r.Action, field,
					strOrDash(r.OldValue), strOrDash(r.NewValue))
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	return cmd
}
