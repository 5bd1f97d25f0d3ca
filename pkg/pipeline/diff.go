package pipeline

import (
	"github.com/pmezard/go-difflib/difflib"
	"gitlab.com/tozd/go/errors"
)

// UnifiedDiff renders the change a run made to path as a unified diff. An
// unmodified result yields an empty string.
func UnifiedDiff(path string, result *Result) (string, error) {
	if !result.WasModified {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(result.Original),
		B:        difflib.SplitLines(result.Modified),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return "", errors.Errorf("diffing %s: %w", path, err)
	}
	return diff, nil
}
