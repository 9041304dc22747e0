package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/specdir"
)

func newSpecRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.SpecRunUse,
		Short: messages.SpecRunShort,
	}
	cmd.AddCommand(newSpecRunApplyCmd())
	cmd.AddCommand(newSpecRunModeCmd())
	return cmd
}

func resolveSpecRoot(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return getwd()
}

func newSpecRunApplyCmd() *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the pending transition selected by the mode flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveSpecRoot(rootFlag)
			if err != nil {
				return err
			}
			transition, err := specdir.Manager{Root: root, Warn: cmd.ErrOrStderr()}.Apply()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch transition.Mode {
			case specdir.ModeFirst:
				_, _ = fmt.Fprint(out, messages.SpecRunFirstSummary)
			case specdir.ModeUpdate:
				_, _ = fmt.Fprintf(out, messages.SpecRunUpdateSummaryFmt, transition.BackupPath)
			case specdir.ModeNew:
				_, _ = fmt.Fprintf(out, messages.SpecRunNewSummaryFmt, transition.ArchiveID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", messages.FlagSpecRoot)
	return cmd
}

func newSpecRunModeCmd() *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   messages.SpecRunModeUse,
		Short: messages.SpecRunModeShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveSpecRoot(rootFlag)
			if err != nil {
				return err
			}
			mode := specdir.Mode(args[0])
			if err := (specdir.Manager{Root: root}).SetMode(mode); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.SpecRunModeSetFmt, mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", messages.FlagSpecRoot)
	return cmd
}
