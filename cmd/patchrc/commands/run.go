package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrFilesFailed is returned when at least one target could not be processed
var ErrFilesFailed = errors.Base("files failed")

// defaultJobs is how many files are processed at once unless --jobs says
// otherwise
const defaultJobs = 4

// runOptions are the flags shared by apply and check
type runOptions struct {
	dryRun   bool
	showDiff bool
	jobs     int
}

// outcome is what happened to one target file
type outcome struct {
	result *pipeline.Result
	err    error
}

// targets returns the files named on the command line, or the rule set's
// own file globs when none were given
func targets(ctx context.Context, o *opts.RootOpts, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := o.Config.ExpandFiles(ctx)
	if err != nil {
		return nil, errors.Errorf("expanding files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no target files: set files in %s or pass paths", o.Config.Location())
	}
	o.Logger.Infof("%d files matched %d patterns in %s", len(files), len(o.Config.Files), o.Config.Location())
	return files, nil
}

// runFiles runs the loaded rules over every file, each as its own run, and
// reports the outcomes in input order. It returns how many files changed
// (or would change, on a dry run).
func runFiles(ctx context.Context, o *opts.RootOpts, files []string, ro runOptions) (int, error) {
	logger := zerolog.Ctx(ctx)

	p, err := pipeline.New(o.Rules...)
	if err != nil {
		return 0, errors.Errorf("building pipeline: %w", err)
	}

	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(ro.jobs, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			f := pipeline.File{Path: path}
			var dst pipeline.Sink = f
			if ro.dryRun {
				dst = nil
			}

			fctx := logger.With().Str("file", path).Logger().WithContext(gctx)
			res, err := p.RunFile(fctx, f, dst)
			outcomes[i] = outcome{result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, errors.Errorf("processing files: %w", err)
	}

	changed, failed := 0, 0
	ruleChanges := make(map[string]int, len(o.Rules))
	for i, path := range files {
		oc := outcomes[i]
		op := log.FileOperation{Path: path, IsDryRun: ro.dryRun}

		switch {
		case oc.err != nil:
			failed++
			op.Status = "FAILED"
			op.Err = oc.err
			o.Logger.LogFileOperation(ctx, op)
			o.Logger.Error(oc.err.Error())
			continue
		case oc.result.WasModified && ro.dryRun:
			op.Status = "WOULD UPDATE"
		case oc.result.WasModified:
			op.Status = "UPDATED"
		default:
			op.Status = "no change"
		}

		op.IsModified = oc.result.WasModified
		op.Changes = oc.result.ChangeCount()
		if op.IsModified {
			changed++
		}
		o.Logger.LogFileOperation(ctx, op)

		rules := make([]log.RuleOperation, 0, len(oc.result.Applied))
		for _, a := range oc.result.Applied {
			rules = append(rules, log.RuleOperation{Name: a.Rule, Changes: a.Changes})
			ruleChanges[a.Rule] += a.Changes
		}
		o.Logger.LogRuleOperations(ctx, path, rules)

		if ro.showDiff {
			diff, err := pipeline.UnifiedDiff(path, oc.result)
			if err != nil {
				return changed, err
			}
			o.Logger.Diff(diff)
		}
	}

	if failed < len(files) {
		for _, r := range p.Rules() {
			if ruleChanges[r.Name()] == 0 {
				o.Logger.Warningf("rule %q made no changes in %d files", r.Name(), len(files)-failed)
			}
		}
	}

	o.Logger.Summary()

	if failed > 0 {
		return changed, errors.Errorf("%w: %d of %d", ErrFilesFailed, failed, len(files))
	}
	return changed, nil
}
