package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/deploy"
	"github.com/framekit/framekit/internal/messages"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.BackupsUse,
		Short: messages.BackupsShort,
	}
	cmd.AddCommand(newBackupsListCmd())
	return cmd
}

func newBackupsListCmd() *cobra.Command {
	var targetFlag string

	cmd := &cobra.Command{
		Use:   messages.BackupsListUse,
		Short: messages.BackupsListShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetRoot(targetFlag)
			if err != nil {
				return err
			}
			backups, err := deploy.ListBackups(deploy.RealSystem{}, root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				_, _ = fmt.Fprintln(out, "No backups found.")
				return nil
			}
			for _, b := range backups {
				_, _ = fmt.Fprintf(out, "%s  version=%s  status=%s  created=%s\n",
					b.ID, b.Version, b.Status, b.CreatedAtUTC)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "", messages.FlagTarget)
	return cmd
}
