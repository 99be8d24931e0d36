package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dropignore/internal/engine"
	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/ignorefile"
	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

func newMatchCmd() *cobra.Command {
	var rules ruleOptions

	cmd := &cobra.Command{
		Use:   "match <path>...",
		Short: "Show the decision the rules make for paths",
		Long: `Evaluate paths against the nearest .dropignore above each of them and
print one line per path:

  <decision>	<path>	<rule that matched>

Nothing on disk is changed. Paths do not need to exist, but a rule ending
in '/' only matches existing directories.`,
		Example: `  dropignore match node_modules src/main.go
  dropignore match --ignore-file ./rules.txt build/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args, rules)
		},
	}

	rules.register(cmd)
	return cmd
}

func runMatch(cmd *cobra.Command, paths []string, rules ruleOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}
	if err := rules.apply(cfg); err != nil {
		return err
	}
	unmatched, err := engine.ParseDecision(cfg.Rules.Unmatched)
	if err != nil {
		return derrors.New(derrors.ErrCodeConfigInvalid, "invalid rules.unmatched", err)
	}

	cache, err := ignorefile.NewCache(ignorefile.DefaultCacheSize, pathinfo.OS{})
	if err != nil {
		return derrors.InternalError("failed to create rule cache", err)
	}

	out := cmd.OutOrStdout()
	reported := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return derrors.New(derrors.ErrCodeInvalidPath, "cannot resolve path", err).WithDetail("path", p)
		}

		file := cfg.Watch.IgnoreFile
		if !filepath.IsAbs(file) {
			var ok bool
			if file, _, ok = ignorefile.FindNearest(abs, filepath.Base(file)); !ok {
				return derrors.New(derrors.ErrCodeConfigNotFound,
					fmt.Sprintf("no %s found above %s", cfg.Watch.IgnoreFile, abs), nil).
					WithSuggestion("Create one in the directory you sync, or pass --ignore-file")
			}
		}

		set, lineErrs, err := cache.Get(file)
		if !reported[file] {
			reported[file] = true
			printLineErrors(cmd.ErrOrStderr(), lineErrs)
		}
		if err != nil {
			return err
		}

		decision, rule := unmatched, "-"
		if m, ok := set.Explain(abs); ok {
			decision = engine.Select
			rule = fmt.Sprintf("%s (%s)", m.Rule(), file)
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", decision, abs, rule); err != nil {
			return err
		}
	}
	return nil
}
