package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/deploy"
	"github.com/framekit/framekit/internal/messages"
)

func newUpdateCmd() *cobra.Command {
	var sourceFlag string
	var targetFlag string
	var yes bool
	var showDiff bool
	var diffLines int

	cmd := &cobra.Command{
		Use:   messages.UpdateUse,
		Short: messages.UpdateShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetRoot(targetFlag)
			if err != nil {
				return err
			}
			source, err := resolveSourceDir(sourceFlag)
			if err != nil {
				return err
			}

			if !yes {
				if !isTerminal() {
					return fmt.Errorf(messages.RequiresTerminalFmt, messages.UpdateUse)
				}
				proceed, err := promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), messages.UpdateConfirmPrompt, true)
				if err != nil {
					return err
				}
				if !proceed {
					return nil
				}
			}

			opts := deploy.UpdateOptions{
				System:     deploy.RealSystem{},
				WarnWriter: cmd.ErrOrStderr(),
			}
			if showDiff {
				opts.DiffWriter = cmd.OutOrStdout()
				opts.DiffMaxLines = diffLines
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := updateRun(ctx, root, source, opts)
			if err != nil {
				return err
			}
			if result.Installed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.InstallFreshSummaryFmt,
					result.ToVersion, root)
				return nil
			}
			if result.Written == 0 {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), messages.UpdateNoChanges)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.UpdateSummaryFmt,
				result.FromVersion, result.ToVersion, root, result.Written)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", messages.FlagSource)
	cmd.Flags().StringVar(&targetFlag, "target", "", messages.FlagTarget)
	cmd.Flags().BoolVar(&yes, "yes", false, messages.FlagYes)
	cmd.Flags().BoolVar(&showDiff, "diff", false, messages.FlagDiff)
	cmd.Flags().IntVar(&diffLines, "diff-lines", deploy.DefaultDiffMaxLines, messages.FlagDiffLines)
	return cmd
}
