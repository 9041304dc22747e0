package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/deploy"
	"github.com/framekit/framekit/internal/messages"
)

var installRun = deploy.Install
var updateRun = deploy.Update

func newInstallCmd() *cobra.Command {
	var sourceFlag string
	var targetFlag string

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetRoot(targetFlag)
			if err != nil {
				return err
			}
			source, err := resolveSourceDir(sourceFlag)
			if err != nil {
				return err
			}

			sys := deploy.RealSystem{}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			installed, err := deploy.Detect(sys, root)
			if err != nil {
				return err
			}
			if installed {
				warnColor := color.New(color.FgYellow)
				_, _ = warnColor.Fprintln(cmd.ErrOrStderr(), messages.InstallAlreadyPresentHint)
				result, err := updateRun(ctx, root, source, deploy.UpdateOptions{
					System:     sys,
					WarnWriter: cmd.ErrOrStderr(),
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.UpdateSummaryFmt,
					result.FromVersion, result.ToVersion, root, result.Written)
				return nil
			}

			result, err := installRun(ctx, root, source, deploy.InstallOptions{
				System:     sys,
				WarnWriter: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.InstallSummaryFmt,
				result.Version, root, result.Agents, result.Scripts)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", messages.FlagSource)
	cmd.Flags().StringVar(&targetFlag, "target", "", messages.FlagTarget)
	return cmd
}
