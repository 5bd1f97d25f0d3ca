package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// newRootCmd builds the command tree around shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply ordered text rewrite rules to source files",
		Long: `patchrc edits source files with an ordered set of rules: collapsing
repeated fragments, exact literal rewrites and line scanners that insert
blocks and inject lines. It does not parse the files it edits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd, o.Debug))
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", ".patchrc.yaml", "rule set file path")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags and attaches it to the
// command context
func setupLogging(cmd *cobra.Command, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(cmd.Context())
}
