package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/deploy"
	"github.com/framekit/framekit/internal/messages"
)

var uninstallRun = deploy.Uninstall

// confirmViaForm renders an interactive yes/no form. Stubbed in tests.
var confirmViaForm = func(title string, value *bool) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(value),
		),
	).Run()
}

func newUninstallCmd() *cobra.Command {
	var targetFlag string
	var yes bool

	cmd := &cobra.Command{
		Use:   messages.UninstallUse,
		Short: messages.UninstallShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetRoot(targetFlag)
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := confirmUninstall(cmd)
				if err != nil {
					return err
				}
				if !confirmed {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), messages.UninstallDeclined)
					return nil
				}
			}

			result, err := uninstallRun(root, deploy.UninstallOptions{
				System:     deploy.RealSystem{},
				WarnWriter: cmd.ErrOrStderr(),
			})
			if result != nil && result.PartialFailure() {
				if printErr := printFilePaths(cmd.ErrOrStderr(), messages.UninstallUnremovableHeader, result.Failed); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.UninstallSummaryFmt,
				result.Version, root, len(result.Removed))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "", messages.FlagTarget)
	cmd.Flags().BoolVar(&yes, "yes", false, messages.FlagYes)
	return cmd
}

// confirmUninstall asks for confirmation, preferring the interactive form on
// a terminal and falling back to a plain stdin prompt otherwise.
func confirmUninstall(cmd *cobra.Command) (bool, error) {
	if isTerminal() {
		confirmed := false
		if err := confirmViaForm(messages.UninstallConfirmPrompt, &confirmed); err != nil {
			return false, err
		}
		return confirmed, nil
	}
	return promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), messages.UninstallConfirmPrompt, false)
}
