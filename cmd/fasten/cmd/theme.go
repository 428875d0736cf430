package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/go-drift/fasten/pkg/theme"
)

func init() {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Inspect theme files",
	}
	themeCmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a theme YAML file",
		Long: `Parse a theme YAML file, resolve its base theme and check every look
value against the look's type. The resolved tables are printed on success.`,
		Args: cobra.ExactArgs(1),
		RunE: runThemeCheck,
	})
	themeCmd.AddCommand(&cobra.Command{
		Use:   "watch <file>",
		Short: "Re-check a theme file whenever it changes",
		Long: `Watch a theme YAML file and print the resolved tables each time it is
saved. Files that fail to parse are reported and skipped. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: runThemeWatch,
	})
	RegisterCommand(themeCmd)
}

func runThemeCheck(cmd *cobra.Command, args []string) error {
	th, err := theme.LoadFile(args[0])
	if err != nil {
		return err
	}
	printTheme(cmd.OutOrStdout(), th)
	return nil
}

func runThemeWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	th, err := theme.LoadFile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTheme(out, th)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = theme.Watch(ctx, path, func(th *theme.Theme) {
		fmt.Fprintln(out)
		printTheme(out, th)
	})
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printTheme(w io.Writer, th *theme.Theme) {
	fmt.Fprintf(w, "theme %s (%s)\n", th.Name, th.Brightness)
	for _, feel := range th.Feels() {
		fmt.Fprintf(w, "  %s:\n", feel)
		for _, look := range th.Looks(feel) {
			v, _ := th.Lookup(feel, look)
			fmt.Fprintf(w, "    %-16s %v\n", look, v)
		}
	}
}
