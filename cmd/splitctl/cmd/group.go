package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) groupCmd() *cobra.Command {
	group := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	group.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.ledger.CreateGroup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group created: %s %s\n", g.Name, g.ID)
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.ledger.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCREATED")
			for _, g := range groups {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, date(g.CreatedAt))
			}
			return tw.Flush()
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "rename GROUP NAME",
		Short: "Rename a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.RenameGroup(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group renamed")
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "delete GROUP",
		Short: "Delete a group with all its expenses and settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group deleted")
			return nil
		},
	})

	return group
}
