package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) participantCmd() *cobra.Command {
	participant := &cobra.Command{
		Use:     "participant",
		Aliases: []string{"p"},
		Short:   "Manage group participants",
	}

	var email string
	add := &cobra.Command{
		Use:   "add GROUP NAME",
		Short: "Add a participant to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.ledger.AddParticipant(cmd.Context(), args[0], args[1], email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Participant added: %s %s\n", p.Name, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "contact email")
	participant.AddCommand(add)

	var all bool
	list := &cobra.Command{
		Use:   "list GROUP",
		Short: "List a group's participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := a.ledger.ListParticipants(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS")
			for _, p := range ps {
				status := "active"
				if !p.Active() {
					status = "removed " + date(p.RemovedAt)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, status)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include removed participants")
	participant.AddCommand(list)

	participant.AddCommand(&cobra.Command{
		Use:   "rename GROUP PARTICIPANT NAME",
		Short: "Rename a participant",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveParticipant(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.RenameParticipant(cmd.Context(), id, args[2]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Participant renamed")
			return nil
		},
	})

	participant.AddCommand(&cobra.Command{
		Use:   "remove GROUP PARTICIPANT",
		Short: "Remove a participant; their past expenses still count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveParticipant(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.RemoveParticipant(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Participant removed")
			return nil
		},
	})

	return participant
}
