package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/framekit/framekit/internal/messages"
)

// EnvTargetRoot overrides the default deployment target root.
const EnvTargetRoot = "FK_TARGET_ROOT"

var getwd = os.Getwd

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newImpactCmd())
	cmd.AddCommand(newSpecRunCmd())
	cmd.AddCommand(newBackupsCmd())

	return cmd
}

// resolveTargetRoot resolves the deployment target root from the --target
// flag, then FK_TARGET_ROOT, then the working directory. A leading ~ is
// expanded; the resolved path must be a directory when it exists.
func resolveTargetRoot(flagValue string) (string, error) {
	candidate := strings.TrimSpace(flagValue)
	if candidate == "" {
		candidate = strings.TrimSpace(os.Getenv(EnvTargetRoot))
	}
	if candidate == "" {
		cwd, err := getwd()
		if err != nil {
			return "", err
		}
		return cwd, nil
	}
	expanded, err := homedir.Expand(candidate)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return "", fmt.Errorf(messages.TargetNotDirFmt, abs)
	}
	return abs, nil
}

// resolveSourceDir resolves the framework source tree from the --source flag,
// defaulting to the working directory.
func resolveSourceDir(flagValue string) (string, error) {
	candidate := strings.TrimSpace(flagValue)
	if candidate == "" {
		return getwd()
	}
	expanded, err := homedir.Expand(candidate)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// promptYesNo asks a yes/no question and returns the user's choice or an error.
// defaultYes controls the result when the user provides an empty response.
func promptYesNo(in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	reader := bufio.NewReader(in)
	for {
		if defaultYes {
			if _, err := fmt.Fprintf(out, messages.PromptYesDefaultFmt, prompt); err != nil {
				return false, err
			}
		} else {
			if _, err := fmt.Fprintf(out, messages.PromptNoDefaultFmt, prompt); err != nil {
				return false, err
			}
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		response := strings.TrimSpace(line)
		if response == "" {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return defaultYes, nil
		}
		switch strings.ToLower(response) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			return false, fmt.Errorf("unrecognized response %q", response)
		}
		if _, err := fmt.Fprintln(out, "Please answer yes or no."); err != nil {
			return false, err
		}
	}
}

// printFilePaths prints a list of file paths with a header.
func printFilePaths(out io.Writer, header string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out, header); err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := fmt.Fprintf(out, messages.PathLineFmt, path); err != nil {
			return err
		}
	}
	return nil
}
