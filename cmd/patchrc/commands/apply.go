package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	ro := runOptions{jobs: defaultJobs}

	cmd := &cobra.Command{
		Use:   "apply [files...]",
		Short: "Apply the rule set to its target files",
		Long: `Apply runs every rule, in order, over each target file.
It will:
1. Load and validate the rule set
2. Resolve the target files (arguments, or the rule set's files globs)
3. Run the rules over each file
4. Atomically replace each file that changed

A file whose rules fail is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)

			if err := o.Load(ctx); err != nil {
				return err
			}

			files, err := targets(ctx, o, args)
			if err != nil {
				return err
			}

			if ro.dryRun {
				o.Logger.Header("previewing rules")
			} else {
				o.Logger.Header("applying rules")
			}

			_, err = runFiles(ctx, o, files, ro)
			return err
		},
	}

	cmd.Flags().BoolVarP(&ro.dryRun, "dry-run", "n", false, "report changes without writing files")
	cmd.Flags().BoolVar(&ro.showDiff, "diff", false, "print a unified diff for each changed file")
	cmd.Flags().IntVarP(&ro.jobs, "jobs", "j", defaultJobs, "number of files to process at once")

	return cmd
}
