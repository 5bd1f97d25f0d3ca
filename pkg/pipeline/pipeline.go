// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// 📊 Applied records what one rule did during a run
type Applied struct {
	Rule    string
	Changes int
}

// 📦 Result contains the outcome of a run
type Result struct {
	// Original is the text before any rule ran
	Original string

	// Modified is the text after the last rule ran
	Modified string

	// WasModified is true when Modified differs from Original
	WasModified bool

	// Applied has one entry per rule, in run order
	Applied []Applied
}

// ChangeCount sums the changes reported by every rule
func (r *Result) ChangeCount() int {
	n := 0
	for _, a := range r.Applied {
		n += a.Changes
	}
	return n
}

// 🔄 Pipeline applies an ordered list of rules; later rules see the output
// of earlier ones
type Pipeline struct {
	rules []rule.Rule
}

// New checks that every rule is runnable and keeps their order
func New(rules ...rule.Rule) (*Pipeline, error) {
	for i, r := range rules {
		switch r.(type) {
		case rule.TextRule, rule.LineRule:
		default:
			return nil, errors.Errorf("rule %d (%s): unsupported rule type %T", i, r.Name(), r)
		}
	}
	return &Pipeline{rules: rules}, nil
}

// Rules returns the rules in run order
func (p *Pipeline) Rules() []rule.Rule {
	return p.rules
}

// Run applies every rule to text. Any rule error fails the whole run.
func (p *Pipeline) Run(text string) (*Result, error) {
	result := &Result{
		Original: text,
		Applied:  make([]Applied, 0, len(p.rules)),
	}

	current := text
	for _, r := range p.rules {
		var n int
		switch r := r.(type) {
		case rule.TextRule:
			current, n = r.ApplyText(current)
		case rule.LineRule:
			lines, trailing := splitLines(current)
			out, changes, err := r.ApplyLines(lines)
			if err != nil {
				return nil, errors.Errorf("applying rule %q: %w", r.Name(), err)
			}
			current, n = joinLines(out, trailing), changes
		}
		result.Applied = append(result.Applied, Applied{Rule: r.Name(), Changes: n})
	}

	result.Modified = current
	result.WasModified = current != text
	return result, nil
}

// RunFile reads src, runs the pipeline and writes the result to dst when it
// changed. A nil dst makes it a dry run. Nothing is written unless every rule
// succeeded.
func (p *Pipeline) RunFile(ctx context.Context, src Source, dst Sink) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	text, err := src.ReadText(ctx)
	if err != nil {
		return nil, errors.Errorf("reading source: %w", err)
	}

	result, err := p.Run(text)
	if err != nil {
		return nil, err
	}

	for _, a := range result.Applied {
		logger.Trace().Str("rule", a.Rule).Int("changes", a.Changes).Msg("rule applied")
	}

	if !result.WasModified || dst == nil {
		logger.Debug().Bool("modified", result.WasModified).Bool("dry_run", dst == nil).Msg("skipping write")
		return result, nil
	}

	if err := dst.WriteText(ctx, result.Modified); err != nil {
		return nil, errors.Errorf("writing result: %w", err)
	}

	logger.Debug().Int("changes", result.ChangeCount()).Msg("wrote result")
	return result, nil
}

// splitLines splits text on newlines, reporting whether it ended with one so
// joinLines can restore it
func splitLines(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	trailing := strings.HasSuffix(text, "\n")
	if trailing {
		text = text[:len(text)-1]
	}
	return strings.Split(text, "\n"), trailing
}

func joinLines(lines []string, trailing bool) string {
	s := strings.Join(lines, "\n")
	if trailing {
		s += "\n"
	}
	return s
}
