package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dropignore/internal/ignorefile"
	"github.com/Aman-CERP/dropignore/internal/pathinfo"
	"github.com/Aman-CERP/dropignore/internal/ui"
)

func newRulesCmd() *cobra.Command {
	var (
		rules   ruleOptions
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "rules [dir]",
		Short: "List the compiled rules for a directory",
		Long: `Compile the rule file for a directory and print each rule next to the
regular expression it compiled to. Lines that could not be compiled are
reported on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runRules(cmd, dir, rules, noColor)
		},
	}

	rules.register(cmd)
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func runRules(cmd *cobra.Command, dir string, rules ruleOptions, noColor bool) error {
	root, err := resolveDir(dir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := rules.apply(cfg); err != nil {
		return err
	}

	file := cfg.IgnoreFilePath(root)
	set, lineErrs, err := ignorefile.Load(file, root, pathinfo.OS{})
	printLineErrors(cmd.ErrOrStderr(), lineErrs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := ui.GetStyles(noColor || !ui.ColorEnabled(out))

	_, _ = fmt.Fprintf(out, "%s %s\n", styles.Header.Render("Rules from"), styles.Path.Render(file))
	if set.Len() == 0 {
		_, _ = fmt.Fprintln(out, styles.Warning.Render("no usable rules"))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tRULE\tFLAGS\tPATTERN")
	for i, m := range set.Matchers() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			i+1, m.Rule(), ruleFlags(m), styles.Pattern.Render(m.Pattern()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, styles.Dim.Render(fmt.Sprintf("%d rules, %d skipped", set.Len(), len(lineErrs))))
	return nil
}

func ruleFlags(m *ignorefile.Matcher) string {
	switch {
	case m.DirOnly() && m.Relative():
		return "dir,any-depth"
	case m.DirOnly():
		return "dir"
	case m.Relative():
		return "any-depth"
	default:
		return "-"
	}
}
