package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace management commands",
	}
	cmd.AddCommand(newWorkspaceCreateCmd())
	cmd.AddCommand(newWorkspaceListCmd())
	cmd.AddCommand(newWorkspaceInviteCmd())
	cmd.AddCommand(newWorkspaceMembersCmd())
	return cmd
}

func newWorkspaceCreateCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			ws, err := svc.CreateWorkspace(args[0], flags.userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workspace %d (%s)\n", ws.ID, ws.Name)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newWorkspaceListCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the workspaces the user belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			list, err := svc.ListWorkspaces(flags.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No workspaces")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tOWNER\tMEMBERS")
			for _, ws := range list {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", ws.ID, ws.Name, ws.OwnerID, ws.MemberCount)
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	return cmd
}

func newWorkspaceInviteCmd() *cobra.Command {
	var (
		flags commonFlags
		role  string
	)

	cmd := &cobra.Command{
		Use:   "invite <workspace-id> <user-id>",
		Short: "Add a user to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID(args[0])
			if err != nil {
				return err
			}
			uid, err := parseID(args[1])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			m, err := svc.InviteMember(wsID, flags.userID, uid, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added user %d to workspace %d as %s\n", m.UserID, wsID, m.Role)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&role, "role", "MEMBER", "role: ADMIN, MEMBER or VIEWER")
	return cmd
}

func newWorkspaceMembersCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "members <workspace-id>",
		Short: "List a workspace's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wsID, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := serviceFromConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			members, err := svc.Members(wsID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tROLE\tJOINED")
			for _, m := range members {
				fmt.Fprintf(w, "%d\t%s\t%s\n", m.UserID, m.Role, m.JoinedAt.UTC().Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	return cmd
}
