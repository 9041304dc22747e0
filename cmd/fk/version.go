package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/deploy"
	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
	}

	cmd.AddCommand(newVersionGetCmd())
	cmd.AddCommand(newVersionSetCmd())
	cmd.AddCommand(newVersionIncrementCmd())
	cmd.AddCommand(newVersionCompareCmd())
	cmd.AddCommand(newVersionValidateCmd())
	cmd.AddCommand(newVersionInfoCmd())

	return cmd
}

// markerFlags resolves which version marker a subcommand operates on: the
// source tree marker by default, or the deployed marker under --target.
type markerFlags struct {
	source string
	target string
}

func (f *markerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", messages.FlagSource)
	cmd.Flags().StringVar(&f.target, "target", "", messages.FlagTarget)
}

func (f *markerFlags) path() (string, error) {
	if f.target != "" {
		root, err := resolveTargetRoot(f.target)
		if err != nil {
			return "", err
		}
		return deploy.Layout{Root: root}.MarkerPath(), nil
	}
	source, err := resolveSourceDir(f.source)
	if err != nil {
		return "", err
	}
	return deploy.SourceLayout{Root: source}.VersionPath(), nil
}

func newVersionGetCmd() *cobra.Command {
	flags := &markerFlags{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current version",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.path()
			if err != nil {
				return err
			}
			v, err := semver.Read(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVersionSetCmd() *cobra.Command {
	flags := &markerFlags{}
	cmd := &cobra.Command{
		Use:   "set <version>",
		Short: "Overwrite the version marker, backing up the previous value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.Parse(args[0])
			if err != nil {
				return err
			}
			path, err := flags.path()
			if err != nil {
				return err
			}
			if err := semver.Write(path, v); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.VersionSetOutputFmt, v)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVersionIncrementCmd() *cobra.Command {
	flags := &markerFlags{}
	cmd := &cobra.Command{
		Use:   "increment <major|minor|patch>",
		Short: "Bump one version field and reset the lower-order fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.path()
			if err != nil {
				return err
			}
			current, err := semver.Read(path)
			if err != nil {
				return err
			}
			next, err := semver.Increment(current, args[0])
			if err != nil {
				return err
			}
			if err := semver.Write(path, next); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.VersionIncrementOutputFmt, current, next)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVersionCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two versions: prints less, equal, or greater",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := semver.Parse(args[0])
			if err != nil {
				return err
			}
			b, err := semver.Parse(args[1])
			if err != nil {
				return err
			}
			var word string
			switch semver.Compare(a, b) {
			case -1:
				word = messages.VersionCompareLess
			case 0:
				word = messages.VersionCompareEqual
			default:
				word = messages.VersionCompareGreater
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), word)
			return nil
		},
	}
}

func newVersionValidateCmd() *cobra.Command {
	flags := &markerFlags{}
	cmd := &cobra.Command{
		Use:   "validate [version]",
		Short: "Check that a string (or the marker) is a well-formed version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v semver.Version
			if len(args) == 1 {
				parsed, err := semver.Parse(args[0])
				if err != nil {
					return err
				}
				v = parsed
			} else {
				path, err := flags.path()
				if err != nil {
					return err
				}
				read, err := semver.Read(path)
				if err != nil {
					return err
				}
				v = read
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.VersionValidOutputFmt, v)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVersionInfoCmd() *cobra.Command {
	var targetFlag string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the deployed version, install time, and backup count",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveTargetRoot(targetFlag)
			if err != nil {
				return err
			}
			sys := deploy.RealSystem{}
			v, err := deploy.ReadMarker(sys, root)
			if err != nil {
				return err
			}
			installedAt, err := deploy.ReadInstalledAt(sys, root)
			if err != nil {
				return err
			}
			backups, err := deploy.ListBackups(sys, root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version:      %s\n", v)
			_, _ = fmt.Fprintf(out, "installed_at: %s\n", installedAt.Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, "backups:      %d\n", len(backups))
			return nil
		},
	}
	cmd.Flags().StringVar(&targetFlag, "target", "", messages.FlagTarget)
	return cmd
}
