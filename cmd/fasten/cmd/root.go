// Package cmd implements the fasten CLI commands.
//
// Each subcommand registers itself with the root command from an init
// function. The root command resolves fasten.yaml before any subcommand runs
// and configures logging from it.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/fasten/pkg/config"
	"github.com/go-drift/fasten/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var (
	projectDir string
	verbose    bool

	// resolved is filled in by the root command before a subcommand runs.
	resolved *config.Resolved
)

var rootCmd = &cobra.Command{
	Use:   "fasten",
	Short: "Fasten - reactive properties and animators on an owner tree",
	Long: `Fasten drives properties, animators and theme-bound values that live on
a tree of owners. The CLI runs headless simulations of a small tree and
checks theme files.

Use "fasten <command> --help" for more information about a command.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "",
		"project directory holding fasten.yaml (default: nearest parent with fasten.yaml or go.mod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log at debug level and include stack traces in error reports")
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	dir := projectDir
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			if root, err = os.Getwd(); err != nil {
				return err
			}
		}
		dir = root
	}

	r, err := config.Resolve(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		r.Verbose = true
		r.LogLevel = slog.LevelDebug
	}
	resolved = r

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: r.LogLevel}))
	slog.SetDefault(logger)
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: r.Verbose})
	slog.Debug("config resolved", "root", r.Root, "app", r.AppName, "theme", r.ThemeName, "blend", r.ColorBlend)
	return nil
}
