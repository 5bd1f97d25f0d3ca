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

package rule

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// maxCollapsePasses bounds the fixed-point loop in Collapse.ApplyText
const maxCollapsePasses = 16

// 🧹 Collapse replaces every run of one or more consecutive fragments,
// optionally separated by whitespace, with a single replacement
type Collapse struct {
	name        string
	run         *regexp.Regexp
	replacement string
}

var _ TextRule = (*Collapse)(nil)

// NewCollapse creates a collapse rule for a literal fragment
func NewCollapse(name, fragment, replacement string) (*Collapse, error) {
	if fragment == "" {
		return nil, errors.Errorf("collapse %q: fragment is required", name)
	}
	return NewCollapseRegexp(name, regexp.QuoteMeta(fragment), replacement)
}

// NewCollapseRegexp creates a collapse rule for a fragment expression
func NewCollapseRegexp(name, expr, replacement string) (*Collapse, error) {
	if expr == "" {
		return nil, errors.Errorf("collapse %q: fragment is required", name)
	}
	frag, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("collapse %q: compiling fragment: %w", name, err)
	}
	if frag.MatchString("") {
		return nil, errors.Errorf("collapse %q: fragment %q matches the empty string", name, expr)
	}
	run, err := regexp.Compile(`(?:` + expr + `\s*)+`)
	if err != nil {
		return nil, errors.Errorf("collapse %q: compiling run: %w", name, err)
	}
	c := &Collapse{name: name, run: run, replacement: replacement}
	if _, n := c.pass(replacement); n > 0 {
		return nil, errors.Errorf("collapse %q: replacement %q is not stable: it contains a run of the fragment that is not the whole replacement", name, replacement)
	}
	return c, nil
}

func (r *Collapse) Name() string { return r.name }

// ApplyText collapses runs until the text stops changing. Absent fragments
// leave the text untouched.
func (r *Collapse) ApplyText(text string) (string, int) {
	total := 0
	for i := 0; i < maxCollapsePasses; i++ {
		next, changed := r.pass(text)
		if changed == 0 {
			break
		}
		total += changed
		text = next
	}
	return text, total
}

// pass replaces every run once and counts the runs that differed from the
// replacement
func (r *Collapse) pass(text string) (string, int) {
	changed := 0
	next := r.run.ReplaceAllStringFunc(text, func(m string) string {
		if m != r.replacement {
			changed++
		}
		return r.replacement
	})
	return next, changed
}
