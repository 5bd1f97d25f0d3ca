package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"gitlab.com/tozd/go/errors"
)

// ErrOutOfDate is returned by check when applying the rules would change a file
var ErrOutOfDate = errors.Base("files are out of date")

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	ro := runOptions{jobs: defaultJobs, dryRun: true}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Fail if applying the rule set would change any file",
		Long: `Check runs the rule set like apply --dry-run and exits non-zero when any
target would change or any rule fails, for example a block insertion whose
terminator line is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "check").Logger().WithContext(ctx)

			if err := o.Load(ctx); err != nil {
				return err
			}

			files, err := targets(ctx, o, args)
			if err != nil {
				return err
			}

			o.Logger.Header("checking rules")

			changed, err := runFiles(ctx, o, files, ro)
			if err != nil {
				return err
			}
			if changed > 0 {
				return errors.Errorf("%w: %d of %d", ErrOutOfDate, changed, len(files))
			}

			o.Logger.Validation(true, "all files are up to date", nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ro.showDiff, "diff", false, "print a unified diff for each file that would change")
	cmd.Flags().IntVarP(&ro.jobs, "jobs", "j", defaultJobs, "number of files to process at once")

	return cmd
}
