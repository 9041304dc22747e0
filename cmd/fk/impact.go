package main

import (
	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/gate"
	"github.com/framekit/framekit/internal/impact"
	"github.com/framekit/framekit/internal/messages"
)

var gateCheck = gate.Check

func newImpactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ImpactUse,
		Short: messages.ImpactShort,
	}
	cmd.AddCommand(newImpactCheckCmd())
	return cmd
}

func newImpactCheckCmd() *cobra.Command {
	var dirFlag string
	var policyFlag string
	var verbose bool
	var machineReadable bool

	cmd := &cobra.Command{
		Use:   messages.ImpactCheckUse,
		Short: messages.ImpactCheckShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirFlag
			if dir == "" {
				cwd, err := getwd()
				if err != nil {
					return err
				}
				dir = cwd
			}

			opts := gate.CheckOptions{
				Dir:     dir,
				BaseRef: args[0],
			}
			if policyFlag != "" {
				table, err := impact.LoadTable(policyFlag)
				if err != nil {
					return err
				}
				opts.Table = &table
			}

			report, err := gateCheck(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if machineReadable {
				if err := report.WriteMachineReadable(cmd.OutOrStdout()); err != nil {
					return err
				}
			} else {
				report.WriteText(cmd.OutOrStdout(), verbose)
			}

			if !report.Passed() {
				return &SilentExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "repository directory to check")
	cmd.Flags().StringVar(&policyFlag, "policy", "", messages.FlagPolicy)
	cmd.Flags().BoolVar(&verbose, "verbose", false, messages.FlagVerbose)
	cmd.Flags().BoolVar(&machineReadable, "machine-readable", false, messages.FlagMachineReadable)
	return cmd
}
