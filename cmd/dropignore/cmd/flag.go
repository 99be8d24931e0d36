package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ignore <path>",
		Aliases: []string{"i"},
		Short:   "Mark a path as ignored by Dropbox",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlag(cmd, args[0], true)
		},
	}
}

func newUnignoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unignore <path>",
		Aliases: []string{"u"},
		Short:   "Let Dropbox sync a path again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlag(cmd, args[0], false)
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "check <path>",
		Aliases: []string{"c"},
		Short:   "Report whether a path is ignored by Dropbox",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runFlag(cmd *cobra.Command, path string, ignore bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if ignore {
		if err := store.Set(ctx, path); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "ignored %s\n", path)
		return err
	}

	if err := store.Clear(ctx, path); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "unignored %s\n", path)
	return err
}

func runCheck(cmd *cobra.Command, path string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ignored, err := store.Query(cmd.Context(), path)
	if err != nil {
		return err
	}
	if ignored {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is ignored\n", path)
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is not ignored\n", path)
	}
	return err
}
